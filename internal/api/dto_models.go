package api

import (
	"pixelforge-backend-go/internal/models"
	"pixelforge-backend-go/internal/provider"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// GenerationResponse carries a settled generation back to the client.
type GenerationResponse struct {
	Success          bool                   `json:"success"`
	Images           []provider.Image       `json:"images"`
	Provider         string                 `json:"provider"`
	Model            string                 `json:"model"`
	Basis            models.GenerationBasis `json:"basis"`
	RemainingBalance int64                  `json:"remainingBalance"`
	RemainingFree    int64                  `json:"remainingFree"`
}

// TopUpResponse confirms an applied credit top-up.
type TopUpResponse struct {
	Success      bool  `json:"success"`
	CreditsAdded int64 `json:"creditsAdded"`
	NewBalance   int64 `json:"newBalance"`
}

// PackListResponse wraps the purchasable credit packs.
type PackListResponse struct {
	Packs []*models.CreditPack `json:"packs"`
}

// LedgerHistoryResponse wraps an account's recent ledger entries.
type LedgerHistoryResponse struct {
	Entries []*models.LedgerEntry `json:"entries"`
}
