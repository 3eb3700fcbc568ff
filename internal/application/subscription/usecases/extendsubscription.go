package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type ExtendSubscriptionCommand struct {
	SubscriptionID uint `json:"subscription_id" validate:"required"`
	Days           int  `json:"days" validate:"gt=0,lte=3650"`
	ActorID        string
}

type ExtendSubscriptionResult struct {
	SubscriptionID uint
	PreviousEnd    time.Time
	EndDate        time.Time
	Status         string
	RemindersAdded int
}

// ExtendSubscriptionUseCase moves the end date forward and adds reminders for
// the new end date. Reminders already sent are untouched.
type ExtendSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	reminderRepo     subscription.ReminderRepository
	settingsRepo     guild.Repository
	auditRecorder    audit.Recorder
	logger           logger.Interface
	now              func() time.Time
}

func NewExtendSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	reminderRepo subscription.ReminderRepository,
	settingsRepo guild.Repository,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ExtendSubscriptionUseCase {
	return &ExtendSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		reminderRepo:     reminderRepo,
		settingsRepo:     settingsRepo,
		auditRecorder:    auditRecorder,
		logger:           logger,
		now:              defaultClock(),
	}
}

func (uc *ExtendSubscriptionUseCase) Execute(ctx context.Context, cmd ExtendSubscriptionCommand) (*ExtendSubscriptionResult, error) {
	uc.logger.Infow("executing extend subscription use case", "subscription_id", cmd.SubscriptionID, "days", cmd.Days)

	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	sub, err := loadSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	previousEnd := sub.EndDate()
	if err := sub.Extend(cmd.Days, now); err != nil {
		uc.logger.Warnw("subscription cannot be extended",
			"subscription_id", sub.ID(),
			"status", sub.Status(),
			"error", err,
		)
		return nil, err
	}

	ok, err := uc.subscriptionRepo.UpdateEndDate(ctx, sub.ID(), sub.EndDate(), now)
	if err != nil {
		uc.logger.Errorw("failed to update subscription end date", "subscription_id", sub.ID(), "error", err)
		return nil, fmt.Errorf("failed to extend subscription: %w", err)
	}
	if !ok {
		// Cancelled between the read and the write.
		return nil, errors.NewPreconditionError(errors.ReasonSubscriptionNotActive, "subscription can no longer be extended")
	}

	offsets := reminderOffsets(ctx, uc.settingsRepo, sub.GuildID(), uc.logger)
	added, err := scheduleReminders(ctx, uc.reminderRepo, sub, offsets, uc.now)
	if err != nil {
		// The extension itself is committed; reminders are regenerated on the next extension.
		uc.logger.Errorw("failed to add reminders after extension", "subscription_id", sub.ID(), "error", err)
	}

	auditing.Record(ctx, uc.auditRecorder, uc.logger, &audit.Entry{
		GuildID:    sub.GuildID(),
		ActorID:    cmd.ActorID,
		Action:     audit.ActionSubscriptionExtended,
		EntityType: "subscription",
		EntityID:   sub.ID(),
		Details: map[string]any{
			"days":         cmd.Days,
			"previous_end": previousEnd,
			"end_date":     sub.EndDate(),
		},
		CreatedAt: now,
	})

	uc.logger.Infow("subscription extended successfully",
		"subscription_id", sub.ID(),
		"end_date", sub.EndDate(),
		"reminders_added", added,
	)

	return &ExtendSubscriptionResult{
		SubscriptionID: sub.ID(),
		PreviousEnd:    previousEnd,
		EndDate:        sub.EndDate(),
		Status:         sub.Status().String(),
		RemindersAdded: added,
	}, nil
}

func loadSubscription(ctx context.Context, repo subscription.Repository, id uint) (*subscription.Subscription, error) {
	sub, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonSubscriptionNotFound, "subscription not found")
	}
	return sub, nil
}
