package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

func newLedgerFixture(t *testing.T, initialBalance int64) (LedgerService, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	require.NoError(t, store.Accounts().Create(context.Background(), &models.Account{
		ID:                 "u1",
		Email:              "u1@example.com",
		Balance:            0,
		SubscriptionStatus: models.SubscriptionInactive,
	}))
	svc := NewLedgerService(store.Accounts(), store.Ledger(), zap.NewNop())
	if initialBalance > 0 {
		_, err := svc.Adjust(context.Background(), "u1", initialBalance, models.ReasonDemoTopUp)
		require.NoError(t, err)
	}
	return svc, store
}

func TestLedgerAdjustAppliedDeltasSumToBalance(t *testing.T) {
	svc, _ := newLedgerFixture(t, 0)
	ctx := context.Background()

	deltas := []int64{10, -3, 5, -20, -2, 7, -17, 1}
	var applied int64
	for _, d := range deltas {
		reason := models.ReasonDemoTopUp
		if d < 0 {
			reason = models.ReasonGenerationDebit
		}
		if _, err := svc.Adjust(ctx, "u1", d, reason); err == nil {
			applied += d
		} else {
			require.ErrorIs(t, err, db.ErrInsufficientBalance)
		}
	}

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, applied, balance)
	assert.GreaterOrEqual(t, balance, int64(0))
}

func TestLedgerAdjustRejectsOverdraft(t *testing.T) {
	svc, _ := newLedgerFixture(t, 3)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, "u1", -4, models.ReasonGenerationDebit)
	require.ErrorIs(t, err, db.ErrInsufficientBalance)

	// The rejected delta must leave no trace.
	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)

	entries, err := svc.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1) // only the initial top-up
}

func TestLedgerConcurrentDebitsNeverOverspend(t *testing.T) {
	const initial = 5
	const workers = 20

	svc, _ := newLedgerFixture(t, initial)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Adjust(ctx, "u1", -1, models.ReasonGenerationDebit); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, initial, succeeded)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestLedgerEntriesReconstructBalance(t *testing.T) {
	svc, _ := newLedgerFixture(t, 10)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, "u1", -2, models.ReasonGenerationDebit)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, "u1", 5, models.ReasonDemoTopUp)
	require.NoError(t, err)

	entries, err := svc.History(ctx, "u1", 50)
	require.NoError(t, err)

	var sum int64
	for _, e := range entries {
		sum += e.Delta
	}
	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
}

func TestLedgerRecordPurchase(t *testing.T) {
	svc, store := newLedgerFixture(t, 0)
	ctx := context.Background()

	pack := &models.CreditPack{ID: "starter", Name: "Starter", CreditAmount: 100, Price: 499, Active: true}
	newBalance, err := svc.RecordPurchase(ctx, "u1", pack, pack.Price)
	require.NoError(t, err)
	assert.Equal(t, int64(100), newBalance)

	acct, err := store.Accounts().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, acct.HasPaid)
	assert.Equal(t, models.SubscriptionActive, acct.SubscriptionStatus)

	entries, err := svc.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ReasonPurchase, entries[0].Reason)
	assert.Equal(t, "starter", entries[0].PackID)
}

func TestLedgerUnknownAccount(t *testing.T) {
	svc, _ := newLedgerFixture(t, 0)

	_, err := svc.GetBalance(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.Adjust(context.Background(), "nobody", 10, models.ReasonDemoTopUp)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

// flakyAccountRepo fails a fixed number of times before delegating, to
// exercise the bounded retry on transient store errors.
type flakyAccountRepo struct {
	db.AccountRepository
	failures  int
	transient error
}

func (f *flakyAccountRepo) AdjustBalance(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error) {
	if f.failures > 0 {
		f.failures--
		return 0, f.transient
	}
	return f.AccountRepository.AdjustBalance(ctx, accountID, delta, reason, packID)
}

func TestLedgerRetriesTransientStoreErrors(t *testing.T) {
	store := db.NewMemoryStore()
	require.NoError(t, store.Accounts().Create(context.Background(), &models.Account{ID: "u1"}))

	flaky := &flakyAccountRepo{
		AccountRepository: store.Accounts(),
		failures:          2,
		transient:         errors.New("transient store error"),
	}
	svc := NewLedgerService(flaky, store.Ledger(), zap.NewNop())

	newBalance, err := svc.Adjust(context.Background(), "u1", 5, models.ReasonDemoTopUp)
	require.NoError(t, err)
	assert.Equal(t, int64(5), newBalance)
	assert.Zero(t, flaky.failures)
}

func TestLedgerDoesNotRetryInsufficientBalance(t *testing.T) {
	store := db.NewMemoryStore()
	require.NoError(t, store.Accounts().Create(context.Background(), &models.Account{ID: "u1"}))

	callCount := 0
	flaky := &countingAccountRepo{AccountRepository: store.Accounts(), calls: &callCount}
	svc := NewLedgerService(flaky, store.Ledger(), zap.NewNop())

	_, err := svc.Adjust(context.Background(), "u1", -1, models.ReasonGenerationDebit)
	require.ErrorIs(t, err, db.ErrInsufficientBalance)
	assert.Equal(t, 1, callCount)
}

type countingAccountRepo struct {
	db.AccountRepository
	calls *int
}

func (c *countingAccountRepo) AdjustBalance(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error) {
	*c.calls++
	return c.AccountRepository.AdjustBalance(ctx, accountID, delta, reason, packID)
}
