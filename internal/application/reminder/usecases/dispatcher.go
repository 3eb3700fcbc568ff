package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// dispatcher delivers a single reminder. The sweep and the manual dispatch
// both go through deliver so they record results the same way.
type dispatcher struct {
	reminderRepo     subscription.ReminderRepository
	subscriptionRepo subscription.Repository
	settingsRepo     guild.Repository
	directory        messaging.Directory
	auditRecorder    audit.Recorder
}

// delivery is the result of one attempt. Cause is set for OutcomeFailed.
type delivery struct {
	Outcome Outcome
	Cause   error
}

// deliver returns an error only when the result could not be stored.
func (d *dispatcher) deliver(ctx context.Context, log logger.Interface, r *subscription.Reminder, sub *subscription.Subscription, now time.Time) (delivery, error) {
	log = log.With("reminder_id", r.ID(), "subscription_id", r.SubscriptionID(), "user_id", r.UserID())

	exists, err := d.directory.UserExists(ctx, r.UserID())
	if err != nil {
		return d.fail(ctx, log, r, fmt.Errorf("user lookup failed: %w", err), now)
	}
	if !exists {
		// The member left the platform; marking sent stops the retry loop.
		log.Warnw("reminder user no longer exists, marking sent without dispatch")
		if _, err := d.reminderRepo.MarkSent(ctx, r.ID(), now); err != nil {
			return delivery{}, fmt.Errorf("failed to mark reminder sent: %w", err)
		}
		return delivery{Outcome: OutcomeSkipped}, nil
	}

	locale := guild.DefaultSettings(r.GuildID()).Locale()
	if s, err := d.settingsRepo.Get(ctx, r.GuildID()); err == nil && s != nil {
		locale = s.Locale()
	}

	if err := d.directory.SendToUser(ctx, r.UserID(), reminderNotice(sub, r, now, locale)); err != nil {
		return d.fail(ctx, log, r, fmt.Errorf("dispatch failed: %w", err), now)
	}

	ok, err := d.reminderRepo.MarkSent(ctx, r.ID(), now)
	if err != nil {
		return delivery{}, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if !ok {
		log.Debugw("reminder already marked sent by another run")
		return delivery{Outcome: OutcomeSkipped}, nil
	}

	auditing.Record(ctx, d.auditRecorder, log, &audit.Entry{
		GuildID:    r.GuildID(),
		Action:     audit.ActionReminderSent,
		EntityType: "reminder",
		EntityID:   r.ID(),
		Details:    map[string]any{"subscription_id": r.SubscriptionID(), "days_before": r.DaysBefore()},
		CreatedAt:  now,
	})
	log.Infow("reminder sent", "days_before", r.DaysBefore())
	return delivery{Outcome: OutcomeSent}, nil
}

func (d *dispatcher) fail(ctx context.Context, log logger.Interface, r *subscription.Reminder, cause error, now time.Time) (delivery, error) {
	log.Warnw("reminder delivery failed", "error", cause)
	if err := d.reminderRepo.MarkError(ctx, r.ID(), cause.Error(), now); err != nil {
		return delivery{Outcome: OutcomeFailed, Cause: cause}, fmt.Errorf("failed to record reminder error: %w", err)
	}
	auditing.Record(ctx, d.auditRecorder, log, &audit.Entry{
		GuildID:    r.GuildID(),
		Action:     audit.ActionReminderFailed,
		EntityType: "reminder",
		EntityID:   r.ID(),
		Details:    map[string]any{"subscription_id": r.SubscriptionID(), "error": cause.Error()},
		CreatedAt:  now,
	})
	return delivery{Outcome: OutcomeFailed, Cause: cause}, nil
}
