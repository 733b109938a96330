// Package provider contains the clients for external image-generation APIs.
// All image bytes are produced by third-party providers and merely relayed;
// nothing here touches pixels.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Generation modes accepted at the API boundary.
const (
	ModeTxt2Img = "txt2img"
	ModeImg2Img = "img2img"
)

var (
	// ErrUnknownProvider is returned when a request names a provider the
	// registry does not hold.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResult is returned when a provider responds successfully but
	// delivers no image data. The caller treats it like any provider failure:
	// no value delivered, no debit.
	ErrEmptyResult = errors.New("provider returned no image data")
)

// Request carries the caller's prompt and parameters to a provider.
type Request struct {
	Mode        string
	Prompt      string
	Size        string
	Quality     string
	Style       string
	SourceImage string // base64 image payload for img2img
}

// Image is one generated artifact, base64 encoded as delivered upstream.
type Image struct {
	B64      string `json:"b64"`
	MimeType string `json:"mimeType"`
}

// Result is a successful provider response.
type Result struct {
	Images []Image
	Model  string
}

// ImageProvider is implemented by each upstream image-generation client.
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Registry holds the providers enabled at startup, keyed by name.
type Registry struct {
	providers map[string]ImageProvider
}

// NewRegistry creates a registry over the given providers.
func NewRegistry(providers ...ImageProvider) *Registry {
	r := &Registry{providers: make(map[string]ImageProvider)}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (ImageProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
