package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pixelforge-backend-go/internal/models"
)

const (
	accountsCollection = "accounts"
	ledgerCollection   = "ledger_entries"
)

// firestoreAccountRepository implements AccountRepository using Firestore.
// Balance mutations run inside Firestore transactions so that the conditional
// update (balance = balance + delta, rejected when the result is negative)
// and the ledger entry commit together or not at all.
type firestoreAccountRepository struct {
	client *firestore.Client
}

// NewFirestoreAccountRepository creates a new instance of firestoreAccountRepository.
func NewFirestoreAccountRepository(client *firestore.Client) AccountRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AccountRepository.")
	}
	return &firestoreAccountRepository{client: client}
}

// Create adds a new account document. The account ID (Firebase Auth UID) is
// used as the Firestore document ID.
func (r *firestoreAccountRepository) Create(ctx context.Context, acct *models.Account) error {
	if acct.ID == "" {
		return errors.New("account ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(acct.ID).Create(ctx, acct)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("account with ID '%s' already exists: %w", acct.ID, err)
		}
		return fmt.Errorf("failed to create account with ID '%s': %w", acct.ID, err)
	}
	return nil
}

// GetByID retrieves an account document by its ID (Firebase Auth UID).
func (r *firestoreAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(accountsCollection).Doc(accountID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account with ID '%s': %w", accountID, err)
	}

	var acct models.Account
	if err := docSnap.DataTo(&acct); err != nil {
		return nil, fmt.Errorf("failed to decode account data for ID '%s': %w", accountID, err)
	}
	acct.ID = docSnap.Ref.ID

	return &acct, nil
}

// AdjustBalance applies delta to the account's balance inside a transaction.
// The read, the non-negative check, the balance write and the ledger entry all
// belong to the same transaction, which is what prevents two concurrent debits
// from both reading the same stale balance.
func (r *firestoreAccountRepository) AdjustBalance(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error) {
	if accountID == "" {
		return 0, errors.New("accountID cannot be empty for AdjustBalance operation")
	}

	acctRef := r.client.Collection(accountsCollection).Doc(accountID)
	entryRef := r.client.Collection(ledgerCollection).Doc(uuid.NewString())

	var newBalance int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(acctRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
			}
			return err
		}

		var acct models.Account
		if err := docSnap.DataTo(&acct); err != nil {
			return fmt.Errorf("failed to decode account data for ID '%s': %w", accountID, err)
		}

		if acct.Balance+delta < 0 {
			return fmt.Errorf("adjust of %d on balance %d for account '%s': %w", delta, acct.Balance, accountID, ErrInsufficientBalance)
		}
		newBalance = acct.Balance + delta

		if err := tx.Update(acctRef, []firestore.Update{
			{Path: "balance", Value: newBalance},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}); err != nil {
			return err
		}

		entry := &models.LedgerEntry{
			AccountID: accountID,
			Delta:     delta,
			Reason:    reason,
			Balance:   newBalance,
			PackID:    packID,
		}
		return tx.Create(entryRef, entry)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("balance adjustment transaction failed for account '%s': %w", accountID, err)
	}
	return newBalance, nil
}

// IncrementFreeUsed bumps the free-generation counter by one inside a
// transaction. The counter is monotonic; there is no decrement path.
func (r *firestoreAccountRepository) IncrementFreeUsed(ctx context.Context, accountID string) (int64, error) {
	if accountID == "" {
		return 0, errors.New("accountID cannot be empty for IncrementFreeUsed operation")
	}

	acctRef := r.client.Collection(accountsCollection).Doc(accountID)

	var newUsed int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(acctRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
			}
			return err
		}

		var acct models.Account
		if err := docSnap.DataTo(&acct); err != nil {
			return fmt.Errorf("failed to decode account data for ID '%s': %w", accountID, err)
		}

		newUsed = acct.FreeGenerationsUsed + 1
		return tx.Update(acctRef, []firestore.Update{
			{Path: "freeGenerationsUsed", Value: newUsed},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("free-usage increment transaction failed for account '%s': %w", accountID, err)
	}
	return newUsed, nil
}

// MarkPaid flags the account as paying and its subscription as active.
func (r *firestoreAccountRepository) MarkPaid(ctx context.Context, accountID string) error {
	if accountID == "" {
		return errors.New("accountID cannot be empty for MarkPaid operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(accountID).Update(ctx, []firestore.Update{
		{Path: "hasPaid", Value: true},
		{Path: "subscriptionStatus", Value: string(models.SubscriptionActive)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return fmt.Errorf("failed to mark account '%s' as paid: %w", accountID, err)
	}
	return nil
}
