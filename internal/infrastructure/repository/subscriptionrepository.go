package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

const maxPageSize = 100

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return s.SetID(model.ID)
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *SubscriptionRepository) GetByTicketID(ctx context.Context, ticketID uint) (*subscription.Subscription, error) {
	return r.first(ctx, "ticket_id = ?", ticketID)
}

func (r *SubscriptionRepository) first(ctx context.Context, query string, arg any) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) List(ctx context.Context, filter subscription.Filter) ([]*subscription.Subscription, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{})
	if filter.GuildID != "" {
		query = query.Where("guild_id = ?", filter.GuildID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var subModels []*models.SubscriptionModel
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&subModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := mappers.SubscriptionsToDomain(subModels)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (r *SubscriptionRepository) ListExpiringWithin(ctx context.Context, guildID string, now time.Time, days int) ([]*subscription.Subscription, error) {
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	var subModels []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("guild_id = ? AND status = ? AND end_date > ? AND end_date <= ?", guildID, vo.StatusActive.String(), now, until).
		Order("end_date ASC").
		Find(&subModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return mappers.SubscriptionsToDomain(subModels)
}

func (r *SubscriptionRepository) FindLapsed(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND end_date <= ?", vo.StatusActive.String(), now).
		Order("end_date ASC").
		Find(&subModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find lapsed subscriptions: %w", err)
	}
	return mappers.SubscriptionsToDomain(subModels)
}

// UpdateEndDate reactivates an expired subscription along with the new date.
func (r *SubscriptionRepository) UpdateEndDate(ctx context.Context, id uint, endDate time.Time, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND status IN ?", id, []string{vo.StatusActive.String(), vo.StatusExpired.String()}).
		Updates(map[string]any{
			"end_date":   endDate,
			"status":     vo.StatusActive.String(),
			"expired_at": nil,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update subscription end date: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SubscriptionRepository) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND status = ?", id, vo.StatusActive.String()).
		Updates(map[string]any{
			"status":       vo.StatusCancelled.String(),
			"cancelled_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel subscription: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SubscriptionRepository) MarkExpired(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND status = ? AND end_date <= ?", id, vo.StatusActive.String(), at).
		Updates(map[string]any{
			"status":     vo.StatusExpired.String(),
			"expired_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark subscription expired: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SubscriptionRepository) Stats(ctx context.Context, guildID string) (*subscription.Stats, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var counts []struct {
		Status string
		Count  int64
	}
	if err := tx.Model(&models.SubscriptionModel{}).
		Select("status, COUNT(*) AS count").
		Where("guild_id = ?", guildID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions by status: %w", err)
	}

	stats := &subscription.Stats{ActiveRevenue: map[string]decimal.Decimal{}}
	for _, c := range counts {
		switch vo.SubscriptionStatus(c.Status) {
		case vo.StatusActive:
			stats.Active = c.Count
		case vo.StatusExpired:
			stats.Expired = c.Count
		case vo.StatusCancelled:
			stats.Cancelled = c.Count
		}
	}

	// Summed in Go so the decimal type survives both drivers.
	var prices []struct {
		Price    decimal.Decimal
		Currency string
	}
	if err := tx.Model(&models.SubscriptionModel{}).
		Select("price, currency").
		Where("guild_id = ? AND status = ?", guildID, vo.StatusActive.String()).
		Scan(&prices).Error; err != nil {
		return nil, fmt.Errorf("failed to sum active revenue: %w", err)
	}
	for _, p := range prices {
		stats.ActiveRevenue[p.Currency] = stats.ActiveRevenue[p.Currency].Add(p.Price)
	}
	return stats, nil
}
