package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/orrisdesk/internal/application/subscription/dto"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type GetSubscriptionResult struct {
	Subscription *dto.SubscriptionDTO `json:"subscription"`
	Reminders    []*dto.ReminderDTO   `json:"reminders"`
}

// GetSubscriptionUseCase returns one subscription with its reminder schedule.
type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	reminderRepo     subscription.ReminderRepository
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	reminderRepo subscription.ReminderRepository,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		reminderRepo:     reminderRepo,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, subscriptionID uint) (*GetSubscriptionResult, error) {
	sub, err := loadSubscription(ctx, uc.subscriptionRepo, subscriptionID)
	if err != nil {
		return nil, err
	}

	reminders, err := uc.reminderRepo.ListBySubscription(ctx, sub.ID())
	if err != nil {
		uc.logger.Errorw("failed to list reminders", "subscription_id", sub.ID(), "error", err)
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	out := make([]*dto.ReminderDTO, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, dto.ToReminderDTO(r))
	}
	return &GetSubscriptionResult{Subscription: dto.ToSubscriptionDTO(sub), Reminders: out}, nil
}
