package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"pixelforge-backend-go/internal/models"
)

// firestoreLedgerRepository reads the immutable ledger entries written by the
// account repository's balance transactions.
type firestoreLedgerRepository struct {
	client *firestore.Client
}

// NewFirestoreLedgerRepository creates a new instance of firestoreLedgerRepository.
func NewFirestoreLedgerRepository(client *firestore.Client) LedgerRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for LedgerRepository.")
	}
	return &firestoreLedgerRepository{client: client}
}

// ListByAccount returns the most recent ledger entries for an account, newest first.
func (r *firestoreLedgerRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}
	if limit <= 0 {
		limit = 50
	}

	iter := r.client.Collection(ledgerCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var entries []*models.LedgerEntry
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate ledger entries for account '%s': %w", accountID, err)
		}
		var entry models.LedgerEntry
		if err := docSnap.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode ledger entry '%s': %w", docSnap.Ref.ID, err)
		}
		entry.ID = docSnap.Ref.ID
		entries = append(entries, &entry)
	}
	return entries, nil
}
