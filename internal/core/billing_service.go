package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

// billingService implements the BillingService interface. It consumes the
// outcome of a hosted checkout (or the demo simulation); it never touches
// payment instruments itself.
type billingService struct {
	packs    db.PackRepository
	accounts db.AccountRepository
	ledger   LedgerService
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService instance.
func NewBillingService(packs db.PackRepository, accounts db.AccountRepository, ledger LedgerService, logger *zap.Logger) BillingService {
	return &billingService{packs: packs, accounts: accounts, ledger: ledger, logger: logger}
}

// ListPacks returns the purchasable credit packs.
func (s *billingService) ListPacks(ctx context.Context) ([]*models.CreditPack, error) {
	packs, err := s.packs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit packs: %w", err)
	}
	return packs, nil
}

// ConfirmTopUp applies a confirmed credit top-up to the account. With a pack
// reference the pack is validated and its credit amount is authoritative;
// without one this is a demo top-up of the raw amount.
func (s *billingService) ConfirmTopUp(ctx context.Context, accountID string, req models.TopUpRequest) (*TopUpResult, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	if req.Credits <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, req.Credits)
	}

	if req.PackID != "" {
		pack, err := s.packs.GetByID(ctx, req.PackID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: '%s'", ErrPackNotFound, req.PackID)
			}
			return nil, fmt.Errorf("failed to load credit pack '%s': %w", req.PackID, err)
		}
		if !pack.Active || pack.CreditAmount != req.Credits {
			return nil, fmt.Errorf("%w: '%s'", ErrPackNotFound, req.PackID)
		}

		newBalance, err := s.ledger.RecordPurchase(ctx, accountID, pack, pack.Price)
		if err != nil {
			return nil, err
		}
		return &TopUpResult{CreditsAdded: pack.CreditAmount, NewBalance: newBalance}, nil
	}

	newBalance, err := s.ledger.Adjust(ctx, accountID, req.Credits, models.ReasonDemoTopUp)
	if err != nil {
		return nil, err
	}
	// A demo top-up simulates a completed purchase, paid flag included.
	if err := s.accounts.MarkPaid(ctx, accountID); err != nil {
		s.logger.Error("Failed to mark account as paid after demo top-up",
			zap.String("account_id", accountID), zap.Error(err))
	}
	return &TopUpResult{CreditsAdded: req.Credits, NewBalance: newBalance}, nil
}
