package core

import (
	"context"

	"pixelforge-backend-go/internal/models"
	"pixelforge-backend-go/internal/provider"
)

// AccountService defines account lifecycle and snapshot operations.
type AccountService interface {
	// GetOrCreate retrieves an account by ID, creating it with default state
	// (and the optional signup grant) on first authenticated touch.
	GetOrCreate(ctx context.Context, accountID, email string) (*models.Account, bool, error)
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	// Snapshot assembles the account view exposed to the UI layer. An
	// unauthenticated caller gets a zero snapshot rather than an error.
	Snapshot(ctx context.Context, accountID, email string, authenticated bool) (*AccountSnapshot, error)
}

// LedgerService is the single mutation path for spendable credits.
type LedgerService interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	// Adjust applies a signed delta and appends a ledger entry. It fails with
	// db.ErrInsufficientBalance when the delta would drive the balance below
	// zero; no overdraft authorization is exposed.
	Adjust(ctx context.Context, accountID string, delta int64, reason models.LedgerReason) (int64, error)
	// RecordPurchase credits a pack's amount, marks the account as paying and
	// returns the new balance.
	RecordPurchase(ctx context.Context, accountID string, pack *models.CreditPack, amountPaid int64) (int64, error)
	History(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)
}

// GenerationService orchestrates one generation request end to end.
type GenerationService interface {
	Generate(ctx context.Context, accountID string, req models.GenerateRequest) (*GenerationResult, error)
}

// BillingService owns the credit top-up confirmation boundary. Payment capture
// itself happens in a hosted checkout; only the confirmed outcome lands here.
type BillingService interface {
	ListPacks(ctx context.Context) ([]*models.CreditPack, error)
	ConfirmTopUp(ctx context.Context, accountID string, req models.TopUpRequest) (*TopUpResult, error)
}

// SnapshotUser identifies the authenticated caller inside a snapshot.
type SnapshotUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AccountSnapshot is the account view exposed to the UI layer.
type AccountSnapshot struct {
	User                 *SnapshotUser `json:"user"`
	Credits              int64         `json:"credits"`
	FreeGenerationsUsed  int64         `json:"freeGenerationsUsed"`
	GenerationsThisMonth int64         `json:"generationsThisMonth"`
	Authenticated        bool          `json:"authenticated"`
}

// GenerationResult is a settled generation: the relayed artifacts plus the
// caller's refreshed entitlement state.
type GenerationResult struct {
	Images           []provider.Image       `json:"images"`
	Provider         string                 `json:"provider"`
	Model            string                 `json:"model"`
	Basis            models.GenerationBasis `json:"basis"`
	RemainingBalance int64                  `json:"remainingBalance"`
	RemainingFree    int64                  `json:"remainingFree"`
}

// TopUpResult reports a confirmed credit top-up.
type TopUpResult struct {
	CreditsAdded int64 `json:"creditsAdded"`
	NewBalance   int64 `json:"newBalance"`
}
