package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is the single-process RedisRateLimiter used when redis
// is disabled.
type MemoryRateLimiter struct {
	mu    sync.Mutex
	hits  map[string][]time.Time
	calls int
	now   func() time.Time
}

const evictEvery = 1024

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{hits: make(map[string][]time.Time), now: time.Now}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string, limits Limits) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windows := limits.windows()

	var longest time.Duration
	for _, w := range windows {
		if w.limit > 0 && w.duration > longest {
			longest = w.duration
		}
	}
	hits := prune(l.hits[key], now.Add(-longest))

	allowed := true
	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		if countSince(hits, now.Add(-w.duration)) >= w.limit {
			allowed = false
		}
	}

	// Denied requests count too, matching the redis limiter.
	l.hits[key] = append(hits, now)

	l.calls++
	if l.calls%evictEvery == 0 {
		l.evict(now.Add(-time.Hour))
	}
	return allowed, nil
}

// evict drops members whose latest hit is older than cutoff.
func (l *MemoryRateLimiter) evict(cutoff time.Time) {
	for k, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, k)
		}
	}
}

// prune drops hits at or before cutoff; hits are in ascending order.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func countSince(hits []time.Time, since time.Time) int {
	n := 0
	for i := len(hits) - 1; i >= 0 && hits[i].After(since); i-- {
		n++
	}
	return n
}
