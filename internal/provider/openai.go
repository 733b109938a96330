package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	openAIName            = "openai"
	openAIBaseURL         = "https://api.openai.com/v1"
	openAIGenerationModel = "dall-e-3"
	openAIEditModel       = "dall-e-2" // the edits endpoint does not accept dall-e-3
)

// OpenAIProvider calls the OpenAI image generation REST API.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAI provider with the given API key.
func NewOpenAIProvider(apiKey string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    openAIBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider's registry name.
func (p *OpenAIProvider) Name() string { return openAIName }

type openAIGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	Style          string `json:"style,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate runs one generation or edit request against the OpenAI API.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Mode == ModeImg2Img {
		return p.edit(ctx, req)
	}

	body, err := json.Marshal(openAIGenerationRequest{
		Model:          openAIGenerationModel,
		Prompt:         req.Prompt,
		N:              1,
		Size:           req.Size,
		Quality:        req.Quality,
		Style:          req.Style,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("openai: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(httpReq, openAIGenerationModel)
}

// edit runs an img2img request through the images/edits endpoint, which takes
// a multipart form with the source image attached as a PNG.
func (p *OpenAIProvider) edit(ctx context.Context, req Request) (*Result, error) {
	srcBytes, err := base64.StdEncoding.DecodeString(req.SourceImage)
	if err != nil {
		return nil, fmt.Errorf("openai: invalid source image encoding: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build multipart body: %w", err)
	}
	if _, err := part.Write(srcBytes); err != nil {
		return nil, fmt.Errorf("openai: failed to write source image: %w", err)
	}
	for field, value := range map[string]string{
		"model":           openAIEditModel,
		"prompt":          req.Prompt,
		"n":               "1",
		"size":            req.Size,
		"response_format": "b64_json",
	} {
		if value == "" {
			continue
		}
		if err := w.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("openai: failed to write form field %q: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("openai: failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/edits", &buf)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(httpReq, openAIEditModel)
}

func (p *OpenAIProvider) do(httpReq *http.Request, model string) (*Result, error) {
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to read response: %w", err)
	}

	var parsed openAIImageResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("openai: malformed response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("openai: API error (status %d, type %s): %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return nil, fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("openai: %w", ErrEmptyResult)
	}

	result := &Result{Model: model}
	for _, d := range parsed.Data {
		if d.B64JSON == "" {
			continue
		}
		result.Images = append(result.Images, Image{B64: d.B64JSON, MimeType: "image/png"})
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("openai: %w", ErrEmptyResult)
	}
	return result, nil
}
