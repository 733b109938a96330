package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pixelforge-backend-go/internal/models"
)

const packsCollection = "credit_packs"

// firestorePackRepository implements PackRepository using Firestore. Packs are
// seeded out of band; this service only reads them.
type firestorePackRepository struct {
	client *firestore.Client
}

// NewFirestorePackRepository creates a new instance of firestorePackRepository.
func NewFirestorePackRepository(client *firestore.Client) PackRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PackRepository.")
	}
	return &firestorePackRepository{client: client}
}

// GetByID retrieves a credit pack document by its ID.
func (r *firestorePackRepository) GetByID(ctx context.Context, packID string) (*models.CreditPack, error) {
	if packID == "" {
		return nil, errors.New("packID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(packsCollection).Doc(packID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("credit pack with ID '%s' not found: %w", packID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get credit pack with ID '%s': %w", packID, err)
	}

	var pack models.CreditPack
	if err := docSnap.DataTo(&pack); err != nil {
		return nil, fmt.Errorf("failed to decode credit pack data for ID '%s': %w", packID, err)
	}
	pack.ID = docSnap.Ref.ID

	return &pack, nil
}

// ListActive returns all currently purchasable packs.
func (r *firestorePackRepository) ListActive(ctx context.Context) ([]*models.CreditPack, error) {
	iter := r.client.Collection(packsCollection).
		Where("active", "==", true).
		OrderBy("price", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var packs []*models.CreditPack
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate credit packs: %w", err)
		}
		var pack models.CreditPack
		if err := docSnap.DataTo(&pack); err != nil {
			return nil, fmt.Errorf("failed to decode credit pack '%s': %w", docSnap.Ref.ID, err)
		}
		pack.ID = docSnap.Ref.ID
		packs = append(packs, &pack)
	}
	return packs, nil
}
