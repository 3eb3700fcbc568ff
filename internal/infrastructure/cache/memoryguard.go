package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard is the single-process RedisGuard used when redis is disabled.
type MemoryGuard struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{expires: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, ok := g.expires[key]; ok && now.Before(until) {
		return false, nil
	}
	g.expires[key] = now.Add(ttl)
	g.evict(now)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.expires, key)
	return nil
}

func (g *MemoryGuard) Remaining(_ context.Context, key string) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if until, ok := g.expires[key]; ok {
		if left := until.Sub(g.now()); left > 0 {
			return left, nil
		}
	}
	return 0, nil
}

func (g *MemoryGuard) evict(now time.Time) {
	for k, until := range g.expires {
		if !now.Before(until) {
			delete(g.expires, k)
		}
	}
}
