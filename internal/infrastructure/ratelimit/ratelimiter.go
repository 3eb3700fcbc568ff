// Package ratelimit throttles how often one member can trigger workflow
// actions. Windows slide: a request counts against every window it falls in.
package ratelimit

import (
	"context"
	"time"
)

// Limits caps requests per window. A zero limit disables that window.
type Limits struct {
	PerMinute int
	PerHour   int
}

func (l Limits) windows() []window {
	return []window{
		{time.Minute, l.PerMinute},
		{time.Hour, l.PerHour},
	}
}

// Enabled reports whether any window is limited.
func (l Limits) Enabled() bool {
	return l.PerMinute > 0 || l.PerHour > 0
}

type window struct {
	duration time.Duration
	limit    int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limits Limits) (bool, error)
}
