package provider

import "context"

// demoPNG is a 1x1 transparent PNG, base64 encoded. Demo mode relays it in
// place of real provider output so the full request flow (entitlement, debit,
// usage records) can run without external credentials.
const demoPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// DemoProvider is a stand-in ImageProvider that returns a fixed placeholder
// image. It masquerades under a real provider's name so demo-mode requests
// need no special casing downstream.
type DemoProvider struct {
	name string
}

// NewDemoProvider creates a demo provider answering to the given name.
func NewDemoProvider(name string) *DemoProvider {
	return &DemoProvider{name: name}
}

// Name returns the provider's registry name.
func (p *DemoProvider) Name() string { return p.name }

// Generate returns the placeholder image.
func (p *DemoProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{
		Images: []Image{{B64: demoPNG, MimeType: "image/png"}},
		Model:  "demo",
	}, nil
}
