package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(NewMemoryStore(), max, window)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterFirstRequestAllowed(t *testing.T) {
	l, _ := newTestLimiter(30, time.Minute)

	res := l.Check(context.Background(), "user-1")
	require.True(t, res.Allowed)
	assert.Equal(t, 30, res.Limit)
	assert.Equal(t, 29, res.Remaining)
}

func TestLimiterExhaustsWindow(t *testing.T) {
	l, _ := newTestLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		res := l.Check(context.Background(), "user-1")
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
	}

	// The 31st call in the same window is rejected.
	res := l.Check(context.Background(), "user-1")
	require.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.False(t, res.ResetAt.IsZero())
}

func TestLimiterWindowReset(t *testing.T) {
	l, now := newTestLimiter(30, time.Minute)

	for i := 0; i < 31; i++ {
		l.Check(context.Background(), "user-1")
	}
	require.False(t, l.Check(context.Background(), "user-1").Allowed)

	*now = now.Add(time.Minute + time.Millisecond)

	res := l.Check(context.Background(), "user-1")
	require.True(t, res.Allowed)
	assert.Equal(t, 29, res.Remaining)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Check(context.Background(), "user-1").Allowed)
	require.False(t, l.Check(context.Background(), "user-1").Allowed)
	require.True(t, l.Check(context.Background(), "user-2").Allowed)
}

func TestLimiterRejectedCallDoesNotExtendWindow(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)

	first := l.Check(context.Background(), "user-1")
	l.Check(context.Background(), "user-1")

	rejected := l.Check(context.Background(), "user-1")
	require.False(t, rejected.Allowed)
	assert.Equal(t, first.ResetAt, rejected.ResetAt)
}

func TestLimiterConcurrentChecksNeverOverAllow(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(context.Background(), "shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	s.Set("k", Bucket{Count: 3, ExpiresAt: time.Now().Add(time.Minute)})

	_, ok := s.Get("k")
	require.True(t, ok)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}
