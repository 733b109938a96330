package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

const ledgerRetryAttempts = 3

// ledgerService implements LedgerService on top of the account repository's
// transactional AdjustBalance. Transient store errors are retried a bounded
// number of times with backoff; sentinel outcomes (not found, insufficient
// balance) are surfaced immediately because retrying them cannot help.
type ledgerService struct {
	accounts db.AccountRepository
	ledger   db.LedgerRepository
	logger   *zap.Logger
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(accounts db.AccountRepository, ledger db.LedgerRepository, logger *zap.Logger) LedgerService {
	return &ledgerService{accounts: accounts, ledger: ledger, logger: logger}
}

func (s *ledgerService) backoff() retry.Backoff {
	return retry.WithMaxRetries(ledgerRetryAttempts, retry.NewFibonacci(100*time.Millisecond))
}

// GetBalance reads the current balance.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		acct, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		balance = acct.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return 0, fmt.Errorf("%w: account '%s'", ErrAccountNotFound, accountID)
		}
		return 0, fmt.Errorf("failed to read balance for account '%s': %w", accountID, err)
	}
	return balance, nil
}

// Adjust applies a signed delta through the repository's atomic adjustment.
func (s *ledgerService) Adjust(ctx context.Context, accountID string, delta int64, reason models.LedgerReason) (int64, error) {
	return s.adjust(ctx, accountID, delta, reason, "")
}

func (s *ledgerService) adjust(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error) {
	var newBalance int64
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		bal, err := s.accounts.AdjustBalance(ctx, accountID, delta, reason, packID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInsufficientBalance) {
				return err
			}
			return retry.RetryableError(err)
		}
		newBalance = bal
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return 0, fmt.Errorf("%w: account '%s'", ErrAccountNotFound, accountID)
		}
		if errors.Is(err, db.ErrInsufficientBalance) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to adjust balance for account '%s': %w", accountID, err)
	}

	s.logger.Info("Ledger adjustment applied",
		zap.String("account_id", accountID),
		zap.Int64("delta", delta),
		zap.String("reason", string(reason)),
		zap.Int64("new_balance", newBalance),
	)
	return newBalance, nil
}

// RecordPurchase credits a completed pack purchase and flags the account as
// paying. The pack's credit amount is authoritative; amountPaid is recorded
// for the audit trail only.
func (s *ledgerService) RecordPurchase(ctx context.Context, accountID string, pack *models.CreditPack, amountPaid int64) (int64, error) {
	if pack == nil || pack.CreditAmount <= 0 {
		return 0, ErrInvalidAmount
	}

	newBalance, err := s.adjust(ctx, accountID, pack.CreditAmount, models.ReasonPurchase, pack.ID)
	if err != nil {
		return 0, err
	}

	if err := s.accounts.MarkPaid(ctx, accountID); err != nil {
		// The credits are already committed; a failed paid-flag write must not
		// unwind them. Surface it in the logs and move on.
		s.logger.Error("Failed to mark account as paid after purchase",
			zap.String("account_id", accountID), zap.Error(err))
	}

	s.logger.Info("Purchase recorded",
		zap.String("account_id", accountID),
		zap.String("pack_id", pack.ID),
		zap.Int64("credits", pack.CreditAmount),
		zap.Int64("amount_paid", amountPaid),
	)
	return newBalance, nil
}

// History lists the most recent ledger entries for an account.
func (s *ledgerService) History(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	entries, err := s.ledger.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for account '%s': %w", accountID, err)
	}
	return entries, nil
}
