package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

func newBillingFixture(t *testing.T) (BillingService, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	store.SeedDefaultPacks()
	require.NoError(t, store.Accounts().Create(context.Background(), &models.Account{ID: "u1"}))
	ledger := NewLedgerService(store.Accounts(), store.Ledger(), zap.NewNop())
	return NewBillingService(store.Packs(), store.Accounts(), ledger, zap.NewNop()), store
}

func TestListPacksSortedByPrice(t *testing.T) {
	svc, _ := newBillingFixture(t)

	packs, err := svc.ListPacks(context.Background())
	require.NoError(t, err)
	require.Len(t, packs, 3)
	for i := 1; i < len(packs); i++ {
		assert.LessOrEqual(t, packs[i-1].Price, packs[i].Price)
	}
}

func TestConfirmTopUpWithPack(t *testing.T) {
	svc, store := newBillingFixture(t)

	res, err := svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{
		Credits: 100,
		PackID:  "starter",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.CreditsAdded)
	assert.Equal(t, int64(100), res.NewBalance)

	acct, err := store.Accounts().GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, acct.HasPaid)
	assert.Equal(t, int64(100), acct.Balance)
}

func TestConfirmTopUpPackMismatch(t *testing.T) {
	svc, _ := newBillingFixture(t)

	// Claimed credit amount must match the catalog.
	_, err := svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{
		Credits: 9999,
		PackID:  "starter",
	})
	require.ErrorIs(t, err, ErrPackNotFound)
}

func TestConfirmTopUpUnknownPack(t *testing.T) {
	svc, _ := newBillingFixture(t)

	_, err := svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{
		Credits: 100,
		PackID:  "mega",
	})
	require.ErrorIs(t, err, ErrPackNotFound)
}

func TestConfirmTopUpWithoutPack(t *testing.T) {
	svc, store := newBillingFixture(t)

	res, err := svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{Credits: 25})
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.CreditsAdded)
	assert.Equal(t, int64(25), res.NewBalance)

	acct, err := store.Accounts().GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, acct.HasPaid)

	entries, err := store.Ledger().ListByAccount(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ReasonDemoTopUp, entries[0].Reason)
}

func TestConfirmTopUpRejectsAnonymousAndNonPositive(t *testing.T) {
	svc, _ := newBillingFixture(t)

	_, err := svc.ConfirmTopUp(context.Background(), "", models.TopUpRequest{Credits: 10})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{Credits: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.ConfirmTopUp(context.Background(), "u1", models.TopUpRequest{Credits: -5})
	require.ErrorIs(t, err, ErrInvalidAmount)
}
