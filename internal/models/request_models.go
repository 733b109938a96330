package models

// GenerateRequest represents the request body for creating a generation.
type GenerateRequest struct {
	Provider    string `json:"provider" binding:"required"` // "openai" or "gemini"
	Mode        string `json:"mode,omitempty"`              // "txt2img" (default) or "img2img"
	Prompt      string `json:"prompt" binding:"required"`
	Size        string `json:"size,omitempty"`        // e.g. "1024x1024"
	Quality     string `json:"quality,omitempty"`     // e.g. "standard", "hd"
	Style       string `json:"style,omitempty"`       // e.g. "vivid", "natural"
	SourceImage string `json:"sourceImage,omitempty"` // base64 image for img2img
}

// TopUpRequest represents the request body for confirming a credit top-up.
// PackID is optional: demo top-ups carry only a credit amount.
type TopUpRequest struct {
	Credits int64  `json:"credits" binding:"required"`
	PackID  string `json:"packId,omitempty"`
}
