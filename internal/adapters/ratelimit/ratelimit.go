// Package ratelimit counts submissions per key in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more event for key fits in the current window.
// An error means the limiter could not decide; callers fail open.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Window is Limit events per Period.
type Window struct {
	Limit  int
	Period time.Duration
}

// MemoryLimiter is a per-process fixed window. Counts are not shared between
// instances, so it is best-effort only in a scaled deployment.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  Window
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates an in-process limiter. now may be nil.
func NewMemoryLimiter(w Window, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{window: w, now: now, buckets: make(map[string]*bucket)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) >= m.window.Period {
		m.sweep(now)
		m.buckets[key] = &bucket{start: now, count: 1}
		return m.window.Limit > 0, nil
	}
	if b.count >= m.window.Limit {
		return false, nil
	}
	b.count++
	return true, nil
}

// sweep drops expired buckets. Caller holds mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.start) >= m.window.Period {
			delete(m.buckets, k)
		}
	}
}
