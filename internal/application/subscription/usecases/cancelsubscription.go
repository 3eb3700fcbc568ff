package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionID uint
	ActorID        string
	Reason         string
}

// CancelSubscriptionUseCase ends an active subscription. Its reminders stay
// in place and are skipped by the sweep.
type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	auditRecorder    audit.Recorder
	logger           logger.Interface
	now              func() time.Time
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		auditRecorder:    auditRecorder,
		logger:           logger,
		now:              defaultClock(),
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) error {
	sub, err := loadSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	now := uc.now()
	if err := sub.Cancel(now); err != nil {
		uc.logger.Warnw("subscription cannot be cancelled", "subscription_id", sub.ID(), "status", sub.Status())
		return err
	}

	ok, err := uc.subscriptionRepo.Cancel(ctx, sub.ID(), now)
	if err != nil {
		uc.logger.Errorw("failed to cancel subscription", "error", err, "subscription_id", sub.ID())
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if !ok {
		return errors.NewPreconditionError(errors.ReasonSubscriptionNotActive, "subscription is no longer active")
	}

	auditing.Record(ctx, uc.auditRecorder, uc.logger, &audit.Entry{
		GuildID:    sub.GuildID(),
		ActorID:    cmd.ActorID,
		Action:     audit.ActionSubscriptionCancelled,
		EntityType: "subscription",
		EntityID:   sub.ID(),
		Details:    map[string]any{"reason": cmd.Reason},
		CreatedAt:  now,
	})

	uc.logger.Infow("subscription cancelled successfully",
		"subscription_id", sub.ID(),
		"reason", cmd.Reason,
	)
	return nil
}
