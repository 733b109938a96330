package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"pixelforge-backend-go/internal/models"
)

const generationsCollection = "generations"

// firestoreGenerationRepository stores usage records for settled generations.
type firestoreGenerationRepository struct {
	client *firestore.Client
}

// NewFirestoreGenerationRepository creates a new instance of firestoreGenerationRepository.
func NewFirestoreGenerationRepository(client *firestore.Client) GenerationRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for GenerationRepository.")
	}
	return &firestoreGenerationRepository{client: client}
}

// Create appends a generation usage record.
func (r *firestoreGenerationRepository) Create(ctx context.Context, rec *models.GenerationRecord) error {
	if rec.AccountID == "" {
		return errors.New("accountID cannot be empty for generation record Create operation")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.client.Collection(generationsCollection).Doc(rec.ID).Create(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to create generation record for account '%s': %w", rec.AccountID, err)
	}
	return nil
}

// CountSince counts an account's generations since the given instant.
// Only document keys are fetched; the payload is not needed for counting.
func (r *firestoreGenerationRepository) CountSince(ctx context.Context, accountID string, since time.Time) (int64, error) {
	if accountID == "" {
		return 0, errors.New("accountID cannot be empty for CountSince operation")
	}

	iter := r.client.Collection(generationsCollection).
		Where("accountId", "==", accountID).
		Where("createdAt", ">=", since).
		Select().
		Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count generations for account '%s': %w", accountID, err)
		}
		count++
	}
	return count, nil
}
