package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// ExpireSubscriptionsUseCase moves lapsed active subscriptions to expired.
// It is the only writer of the expired status.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	auditRecorder    audit.Recorder
	logger           logger.Interface
	now              func() time.Time
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		auditRecorder:    auditRecorder,
		logger:           logger,
		now:              defaultClock(),
	}
}

// Execute returns the number of subscriptions marked expired. A failure on
// one subscription is logged and does not stop the rest.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	lapsed, err := uc.subscriptionRepo.FindLapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find lapsed subscriptions: %w", err)
	}
	if len(lapsed) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found lapsed subscriptions to expire", "count", len(lapsed))

	marked := 0
	for _, sub := range lapsed {
		if err := ctx.Err(); err != nil {
			return marked, err
		}
		if err := sub.MarkExpired(now); err != nil {
			uc.logger.Warnw("failed to mark subscription as expired",
				"subscription_id", sub.ID(),
				"current_status", sub.Status().String(),
				"error", err,
			)
			continue
		}

		ok, err := uc.subscriptionRepo.MarkExpired(ctx, sub.ID(), now)
		if err != nil {
			uc.logger.Errorw("failed to update expired subscription",
				"subscription_id", sub.ID(),
				"error", err,
			)
			continue
		}
		if !ok {
			// Extended or cancelled since the read.
			continue
		}

		marked++
		auditing.Record(ctx, uc.auditRecorder, uc.logger, &audit.Entry{
			GuildID:    sub.GuildID(),
			Action:     audit.ActionSubscriptionExpired,
			EntityType: "subscription",
			EntityID:   sub.ID(),
			Details:    map[string]any{"end_date": sub.EndDate()},
			CreatedAt:  now,
		})
		uc.logger.Debugw("subscription marked as expired",
			"subscription_id", sub.ID(),
			"subscription_sid", sub.SID(),
		)
	}

	return marked, nil
}
