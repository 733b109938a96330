package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

// accountService implements the AccountService interface.
type accountService struct {
	accounts    db.AccountRepository
	generations db.GenerationRepository
	ledger      LedgerService
	signupGrant int64
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService instance. signupGrant is the
// number of credits granted on first signup (0 disables the grant).
func NewAccountService(accounts db.AccountRepository, generations db.GenerationRepository, ledger LedgerService, signupGrant int64, logger *zap.Logger) AccountService {
	return &accountService{
		accounts:    accounts,
		generations: generations,
		ledger:      ledger,
		signupGrant: signupGrant,
		logger:      logger,
	}
}

// GetOrCreate retrieves an account by ID, creating it on first authenticated
// touch. Returns the account and whether it was created.
func (s *accountService) GetOrCreate(ctx context.Context, accountID, email string) (*models.Account, bool, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get account '%s': %w", accountID, err)
	}

	newAcct := &models.Account{
		ID:                 accountID,
		Email:              email,
		Balance:            0,
		SubscriptionStatus: models.SubscriptionInactive,
	}
	if createErr := s.accounts.Create(ctx, newAcct); createErr != nil {
		// A concurrent first request may have created it in the meantime.
		if existing, getErr := s.accounts.GetByID(ctx, accountID); getErr == nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create account '%s': %w", accountID, createErr)
	}

	if s.signupGrant > 0 {
		newBalance, grantErr := s.ledger.Adjust(ctx, accountID, s.signupGrant, models.ReasonSignupGrant)
		if grantErr != nil {
			s.logger.Error("Failed to apply signup grant",
				zap.String("account_id", accountID), zap.Error(grantErr))
		} else {
			newAcct.Balance = newBalance
		}
	}

	s.logger.Info("Account created", zap.String("account_id", accountID))
	return newAcct, true, nil
}

// GetByID retrieves an account by its ID.
func (s *accountService) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", accountID, err)
	}
	return acct, nil
}

// Snapshot assembles the account view exposed to the UI layer. Anonymous
// callers get a zero snapshot with Authenticated=false.
func (s *accountService) Snapshot(ctx context.Context, accountID, email string, authenticated bool) (*AccountSnapshot, error) {
	if !authenticated || accountID == "" {
		return &AccountSnapshot{Authenticated: false}, nil
	}

	acct, _, err := s.GetOrCreate(ctx, accountID, email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthCount, err := s.generations.CountSince(ctx, accountID, monthStart)
	if err != nil {
		// The monthly counter is informational; a failed count must not take
		// the snapshot down with it.
		s.logger.Warn("Failed to count generations this month",
			zap.String("account_id", accountID), zap.Error(err))
		monthCount = 0
	}

	return &AccountSnapshot{
		User:                 &SnapshotUser{ID: acct.ID, Email: acct.Email},
		Credits:              acct.Balance,
		FreeGenerationsUsed:  acct.FreeGenerationsUsed,
		GenerationsThisMonth: monthCount,
		Authenticated:        true,
	}, nil
}
