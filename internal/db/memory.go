package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pixelforge-backend-go/internal/models"
)

// MemoryStore is an in-memory implementation of all repository interfaces. It
// backs demo mode and tests, and mirrors the Firestore repositories' atomicity
// contract: AdjustBalance holds the store lock across the read, the check and
// the write, so concurrent debits cannot both observe the same stale balance.
type MemoryStore struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	entries     []*models.LedgerEntry
	packs       map[string]*models.CreditPack
	generations []*models.GenerationRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*models.Account),
		packs:    make(map[string]*models.CreditPack),
	}
}

// SeedDefaultPacks installs the demo credit pack catalog.
func (s *MemoryStore) SeedDefaultPacks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pack := range []*models.CreditPack{
		{ID: "starter", Name: "Starter", CreditAmount: 100, Price: 499, Active: true},
		{ID: "creator", Name: "Creator", CreditAmount: 500, Price: 1999, Active: true},
		{ID: "studio", Name: "Studio", CreditAmount: 1200, Price: 3999, Active: true},
	} {
		s.packs[pack.ID] = pack
	}
}

// Accounts returns the store's AccountRepository view.
func (s *MemoryStore) Accounts() AccountRepository { return (*memoryAccounts)(s) }

// Ledger returns the store's LedgerRepository view.
func (s *MemoryStore) Ledger() LedgerRepository { return (*memoryLedger)(s) }

// Packs returns the store's PackRepository view.
func (s *MemoryStore) Packs() PackRepository { return (*memoryPacks)(s) }

// Generations returns the store's GenerationRepository view.
func (s *MemoryStore) Generations() GenerationRepository { return (*memoryGenerations)(s) }

type memoryAccounts MemoryStore

func (s *memoryAccounts) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
	}
	cp := *acct
	return &cp, nil
}

func (s *memoryAccounts) Create(ctx context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.ID]; ok {
		return fmt.Errorf("account with ID '%s' already exists", acct.ID)
	}
	now := time.Now().UTC()
	cp := *acct
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.accounts[acct.ID] = &cp
	return nil
}

func (s *memoryAccounts) AdjustBalance(ctx context.Context, accountID string, delta int64, reason models.LedgerReason, packID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
	}
	if acct.Balance+delta < 0 {
		return 0, fmt.Errorf("adjust of %d on balance %d for account '%s': %w", delta, acct.Balance, accountID, ErrInsufficientBalance)
	}
	acct.Balance += delta
	acct.UpdatedAt = time.Now().UTC()
	s.entries = append(s.entries, &models.LedgerEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Delta:     delta,
		Reason:    reason,
		Balance:   acct.Balance,
		PackID:    packID,
		CreatedAt: acct.UpdatedAt,
	})
	return acct.Balance, nil
}

func (s *memoryAccounts) IncrementFreeUsed(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
	}
	acct.FreeGenerationsUsed++
	acct.UpdatedAt = time.Now().UTC()
	return acct.FreeGenerationsUsed, nil
}

func (s *memoryAccounts) MarkPaid(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
	}
	acct.HasPaid = true
	acct.SubscriptionStatus = models.SubscriptionActive
	acct.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryLedger MemoryStore

func (s *memoryLedger) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var entries []*models.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type memoryPacks MemoryStore

func (s *memoryPacks) GetByID(ctx context.Context, packID string) (*models.CreditPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pack, ok := s.packs[packID]
	if !ok {
		return nil, fmt.Errorf("credit pack with ID '%s' not found: %w", packID, ErrNotFound)
	}
	cp := *pack
	return &cp, nil
}

func (s *memoryPacks) ListActive(ctx context.Context) ([]*models.CreditPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var packs []*models.CreditPack
	for _, pack := range s.packs {
		if pack.Active {
			cp := *pack
			packs = append(packs, &cp)
		}
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Price < packs[j].Price })
	return packs, nil
}

type memoryGenerations MemoryStore

func (s *memoryGenerations) Create(ctx context.Context, rec *models.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.generations = append(s.generations, &cp)
	return nil
}

func (s *memoryGenerations) CountSince(ctx context.Context, accountID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, rec := range s.generations {
		if rec.AccountID == accountID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
