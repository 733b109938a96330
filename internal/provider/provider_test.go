package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(NewDemoProvider("openai"), NewDemoProvider("gemini"))

	p, err := reg.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = reg.Get("midjourney")
	require.ErrorIs(t, err, ErrUnknownProvider)

	assert.ElementsMatch(t, []string{"openai", "gemini"}, reg.Names())
}

func TestDemoProviderDeliversPlaceholder(t *testing.T) {
	p := NewDemoProvider("openai")

	res, err := p.Generate(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.NotEmpty(t, res.Images[0].B64)
	assert.Equal(t, "image/png", res.Images[0].MimeType)
	assert.Equal(t, "demo", res.Model)
}

func TestOpenAIGenerate(t *testing.T) {
	var captured openAIGenerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "aW1hZ2U="}},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", 5*time.Second)
	p.baseURL = srv.URL

	res, err := p.Generate(context.Background(), Request{
		Prompt:  "a red fox",
		Size:    "1024x1024",
		Quality: "hd",
	})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, "aW1hZ2U=", res.Images[0].B64)
	assert.Equal(t, "dall-e-3", res.Model)

	assert.Equal(t, "a red fox", captured.Prompt)
	assert.Equal(t, "b64_json", captured.ResponseFormat)
	assert.Equal(t, 1, captured.N)
	assert.Equal(t, "hd", captured.Quality)
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("bad-key", 5*time.Second)
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), Request{Prompt: "a red fox"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestOpenAIGenerateEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", 5*time.Second)
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), Request{Prompt: "a red fox"})
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestOpenAIEditUsesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/edits", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "dall-e-2", r.FormValue("model"))
		assert.Equal(t, "make it night", r.FormValue("prompt"))
		_, _, err := r.FormFile("image")
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "aW1hZ2U="}},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", 5*time.Second)
	p.baseURL = srv.URL

	res, err := p.Generate(context.Background(), Request{
		Mode:        ModeImg2Img,
		Prompt:      "make it night",
		SourceImage: demoPNG,
	})
	require.NoError(t, err)
	assert.Equal(t, "dall-e-2", res.Model)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, []string{"TEXT", "IMAGE"}, req.GenerationConfig.ResponseModalities)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": "here is your image"},
						{"inlineData": map[string]string{"mimeType": "image/png", "data": "aW1hZ2U="}},
					},
				},
			}},
		})
	}))
	defer srv.Close()

	p := NewGeminiProvider("test-key", 5*time.Second)
	p.baseURL = srv.URL

	res, err := p.Generate(context.Background(), Request{Prompt: "a red fox"})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, "aW1hZ2U=", res.Images[0].B64)
	assert.Equal(t, "image/png", res.Images[0].MimeType)
}

func TestGeminiGenerateTextOnlyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "I cannot generate that image"}},
				},
			}},
		})
	}))
	defer srv.Close()

	p := NewGeminiProvider("test-key", 5*time.Second)
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), Request{Prompt: "a red fox"})
	require.ErrorIs(t, err, ErrEmptyResult)
}
