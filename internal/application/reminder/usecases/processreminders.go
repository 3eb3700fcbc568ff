package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const (
	sweepLockKey = "orrisdesk:sweep:lock"
	// errorBackoff keeps a failed reminder out of sweeps until the next day.
	errorBackoff = 24 * time.Hour
)

// SweepResult summarises one sweep.
type SweepResult struct {
	RunID   string
	Due     int
	Sent    int
	Failed  int
	Skipped int
	Expired int
	// Locked is true when another process held the sweep lock and nothing ran.
	Locked bool
}

// Processed is the number of reminders and subscriptions the sweep changed.
func (r *SweepResult) Processed() int {
	return r.Sent + r.Failed + r.Skipped + r.Expired
}

// ProcessRemindersUseCase is the periodic sweep: it delivers every due
// reminder, then expires lapsed subscriptions. Items are handled one by one
// and a failure on one never stops the rest.
type ProcessRemindersUseCase struct {
	dispatcher
	expirer SubscriptionExpirer
	lock    SweepLock
	lockTTL time.Duration
	logger  logger.Interface
	now     func() time.Time
}

func NewProcessRemindersUseCase(
	reminderRepo subscription.ReminderRepository,
	subscriptionRepo subscription.Repository,
	settingsRepo guild.Repository,
	directory messaging.Directory,
	expirer SubscriptionExpirer,
	lock SweepLock,
	lockTTL time.Duration,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ProcessRemindersUseCase {
	return &ProcessRemindersUseCase{
		dispatcher: dispatcher{
			reminderRepo:     reminderRepo,
			subscriptionRepo: subscriptionRepo,
			settingsRepo:     settingsRepo,
			directory:        directory,
			auditRecorder:    auditRecorder,
		},
		expirer: expirer,
		lock:    lock,
		lockTTL: lockTTL,
		logger:  logger,
		now:     defaultClock(),
	}
}

// Execute runs one sweep and returns the number of items processed.
func (uc *ProcessRemindersUseCase) Execute(ctx context.Context) (int, error) {
	res, err := uc.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	return res.Processed(), nil
}

func (uc *ProcessRemindersUseCase) Sweep(ctx context.Context) (*SweepResult, error) {
	res := &SweepResult{RunID: uuid.NewString()}
	log := uc.logger.With("sweep_id", res.RunID)

	if uc.lock != nil {
		acquired, err := uc.lock.Acquire(ctx, sweepLockKey, uc.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !acquired {
			log.Debugw("sweep lock held elsewhere, skipping run")
			res.Locked = true
			return res, nil
		}
		defer func() {
			if err := uc.lock.Release(context.WithoutCancel(ctx), sweepLockKey); err != nil {
				log.Warnw("failed to release sweep lock", "error", err)
			}
		}()
	}

	// Expire first so lapsed subscriptions get no renewal reminder.
	if uc.expirer != nil {
		expired, err := uc.expirer.Execute(ctx)
		if err != nil {
			log.Errorw("failed to expire lapsed subscriptions", "error", err)
		}
		res.Expired = expired
	}

	now := uc.now()
	due, err := uc.reminderRepo.ListDue(ctx, biztime.DateOf(now), now.Add(-errorBackoff))
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	res.Due = len(due)
	if len(due) > 0 {
		log.Infow("processing due reminders", "count", len(due))
	}

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome := uc.processOne(ctx, log, r, now)
		switch outcome {
		case OutcomeSent:
			res.Sent++
		case OutcomeFailed:
			res.Failed++
		case OutcomeSkipped:
			res.Skipped++
		}
	}

	log.Infow("sweep completed",
		"due", res.Due,
		"sent", res.Sent,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"expired", res.Expired,
	)
	return res, nil
}

// processOne never returns an error; anything that goes wrong is logged and
// counted as a failure.
func (uc *ProcessRemindersUseCase) processOne(ctx context.Context, log logger.Interface, r *subscription.Reminder, now time.Time) Outcome {
	sub, err := uc.subscriptionRepo.GetByID(ctx, r.SubscriptionID())
	if err != nil {
		log.Errorw("failed to load reminder subscription", "reminder_id", r.ID(), "error", err)
		return OutcomeFailed
	}
	if sub == nil || !sub.Status().IsActive() || sub.IsLapsed(now) {
		log.Debugw("reminder subscription not active, skipping", "reminder_id", r.ID())
		return OutcomeSkipped
	}

	d, err := uc.deliver(ctx, log, r, sub, now)
	if err != nil {
		log.Errorw("failed to store reminder result", "reminder_id", r.ID(), "error", err)
		return OutcomeFailed
	}
	return d.Outcome
}
