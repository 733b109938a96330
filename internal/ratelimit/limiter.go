// Package ratelimit implements a fixed-window request-count gate keyed by
// caller identity. It is an abuse-mitigation heuristic, not a billing control:
// the memory-backed store is per-process, and a multi-instance deployment
// swaps in the redis store to keep one global window per key.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket is one key's counter for the current window.
type Bucket struct {
	Count     int
	ExpiresAt time.Time
}

// BucketStore is the injected storage behind the limiter. Stale buckets are
// overwritten lazily on next access; no sweeper is needed for bounded key
// cardinality.
type BucketStore interface {
	Get(key string) (Bucket, bool)
	Set(key string, b Bucket)
	Delete(key string)
}

// AtomicIncrementer is implemented by stores that can increment a key's count
// and arm its expiry in a single atomic round trip. The limiter prefers this
// path when available; it is what makes the window hold across processes.
type AtomicIncrementer interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, expiresAt time.Time, err error)
}

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window rate limiter: at most max requests per key within
// one window.
type Limiter struct {
	mu     sync.Mutex
	store  BucketStore
	max    int
	window time.Duration
	now    func() time.Time
}

// New creates a Limiter over the given store.
func New(store BucketStore, max int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Check records one request for key and reports whether it is allowed.
// The first request in a new or expired window always passes and starts the
// window; once the count reaches the maximum, requests are rejected until
// ResetAt.
//
// A store error on the atomic path fails open: the limiter is a soft guard and
// must not take generation traffic down with it.
func (l *Limiter) Check(ctx context.Context, key string) Result {
	if inc, ok := l.store.(AtomicIncrementer); ok {
		count, expiresAt, err := inc.Incr(ctx, key, l.window)
		if err != nil {
			return Result{Allowed: true, Limit: l.max, Remaining: l.max - 1, ResetAt: l.now().Add(l.window)}
		}
		return l.result(int(count), expiresAt)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.store.Get(key)
	if !ok || !b.ExpiresAt.After(now) {
		b = Bucket{Count: 1, ExpiresAt: now.Add(l.window)}
		l.store.Set(key, b)
		return l.result(1, b.ExpiresAt)
	}

	if b.Count >= l.max {
		return Result{Allowed: false, Limit: l.max, Remaining: 0, ResetAt: b.ExpiresAt}
	}

	b.Count++
	l.store.Set(key, b)
	return l.result(b.Count, b.ExpiresAt)
}

func (l *Limiter) result(count int, resetAt time.Time) Result {
	if count > l.max {
		return Result{Allowed: false, Limit: l.max, Remaining: 0, ResetAt: resetAt}
	}
	return Result{Allowed: true, Limit: l.max, Remaining: l.max - count, ResetAt: resetAt}
}

// MemoryStore is a process-local BucketStore.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]Bucket
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]Bucket)}
}

// Get retrieves the bucket for key.
func (s *MemoryStore) Get(key string) (Bucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	return b, ok
}

// Set stores the bucket for key.
func (s *MemoryStore) Set(key string, b Bucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[key] = b
}

// Delete removes the bucket for key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
}
