package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/subscription/dto"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type ListSubscriptionsQuery struct {
	GuildID  string
	UserID   string
	Status   string
	Page     int
	PageSize int
}

type ListSubscriptionsResult struct {
	Subscriptions []*dto.SubscriptionDTO
	Total         int64
	Page          int
	PageSize      int
}

type ListSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewListSubscriptionsUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, query ListSubscriptionsQuery) (*ListSubscriptionsResult, error) {
	if query.GuildID == "" {
		return nil, errors.NewValidationError("guild_id is required")
	}

	var status vo.SubscriptionStatus
	if query.Status != "" {
		s, err := vo.NewSubscriptionStatus(query.Status)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		status = s
	}

	p := utils.ValidatePagination(query.Page, query.PageSize)
	subs, total, err := uc.subscriptionRepo.List(ctx, subscription.Filter{
		GuildID:  query.GuildID,
		UserID:   query.UserID,
		Status:   status,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "guild_id", query.GuildID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return &ListSubscriptionsResult{
		Subscriptions: dto.ToSubscriptionDTOs(subs),
		Total:         total,
		Page:          p.Page,
		PageSize:      p.PageSize,
	}, nil
}

const (
	defaultExpiringDays = 7
	maxExpiringDays     = 365
)

type ListExpiringQuery struct {
	GuildID string
	Days    int
}

// ListExpiringSubscriptionsUseCase lists active subscriptions ending within
// the next Days days.
type ListExpiringSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
	now              func() time.Time
}

func NewListExpiringSubscriptionsUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *ListExpiringSubscriptionsUseCase {
	return &ListExpiringSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
		now:              defaultClock(),
	}
}

func (uc *ListExpiringSubscriptionsUseCase) Execute(ctx context.Context, query ListExpiringQuery) ([]*dto.SubscriptionDTO, error) {
	if query.GuildID == "" {
		return nil, errors.NewValidationError("guild_id is required")
	}
	days := query.Days
	if days <= 0 {
		days = defaultExpiringDays
	}
	if days > maxExpiringDays {
		return nil, errors.NewValidationError(fmt.Sprintf("days must be at most %d", maxExpiringDays))
	}

	subs, err := uc.subscriptionRepo.ListExpiringWithin(ctx, query.GuildID, uc.now(), days)
	if err != nil {
		uc.logger.Errorw("failed to list expiring subscriptions", "guild_id", query.GuildID, "error", err)
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return dto.ToSubscriptionDTOs(subs), nil
}

type GetSubscriptionStatsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetSubscriptionStatsUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *GetSubscriptionStatsUseCase {
	return &GetSubscriptionStatsUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *GetSubscriptionStatsUseCase) Execute(ctx context.Context, guildID string) (*dto.StatsDTO, error) {
	if guildID == "" {
		return nil, errors.NewValidationError("guild_id is required")
	}
	stats, err := uc.subscriptionRepo.Stats(ctx, guildID)
	if err != nil {
		uc.logger.Errorw("failed to load subscription stats", "guild_id", guildID, "error", err)
		return nil, fmt.Errorf("failed to load subscription stats: %w", err)
	}
	return dto.ToStatsDTO(guildID, stats), nil
}
