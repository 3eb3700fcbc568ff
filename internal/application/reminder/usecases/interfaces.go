package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
)

// SweepLock keeps a sweep to one process at a time. Acquire reports false
// when another holder owns key.
type SweepLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SubscriptionExpirer marks lapsed subscriptions expired and returns how
// many it changed.
type SubscriptionExpirer interface {
	Execute(ctx context.Context) (int, error)
}

// Outcome is what happened to one reminder.
type Outcome string

const (
	OutcomeSent Outcome = "sent"
	// OutcomeFailed means the notice could not be delivered; the error is
	// stored on the reminder.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped covers a departed user, an inactive subscription and a
	// reminder already sent by a concurrent run.
	OutcomeSkipped Outcome = "skipped"
)

func defaultClock() func() time.Time {
	return biztime.NowUTC
}
