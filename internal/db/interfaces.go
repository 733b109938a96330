package db

import (
	"context"
	"time"

	"pixelforge-backend-go/internal/models"
)

// AccountRepository defines storage operations on account credit state.
//
// AdjustBalance is the single mutation path for the credit balance. It must be
// atomic with respect to concurrent adjustments on the same account: the
// balance arithmetic and the negative-balance check happen inside one storage
// transaction, and the matching ledger entry commits with the balance write.
type AccountRepository interface {
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	Create(ctx context.Context, acct *models.Account) error

	// AdjustBalance applies delta to the balance and appends a ledger entry.
	// Returns the new balance, or ErrInsufficientBalance when the delta would
	// drive the balance below zero (nothing is written in that case).
	AdjustBalance(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error)

	// IncrementFreeUsed bumps the monotonic free-generation counter by one and
	// returns the new value.
	IncrementFreeUsed(ctx context.Context, accountID string) (int64, error)

	// MarkPaid flags the account as paying and its subscription as active.
	MarkPaid(ctx context.Context, accountID string) error
}

// LedgerRepository reads the immutable ledger written by AdjustBalance.
type LedgerRepository interface {
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)
}

// PackRepository defines read-only access to purchasable credit packs.
type PackRepository interface {
	GetByID(ctx context.Context, packID string) (*models.CreditPack, error)
	ListActive(ctx context.Context) ([]*models.CreditPack, error)
}

// GenerationRepository stores usage records for settled generations.
type GenerationRepository interface {
	Create(ctx context.Context, rec *models.GenerationRecord) error
	CountSince(ctx context.Context, accountID string, since time.Time) (int64, error)
}
