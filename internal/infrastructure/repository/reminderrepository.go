package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/constants"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

const maxReminderErrorLen = 500

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) subscription.ReminderRepository {
	return &ReminderRepository{db: db}
}

// BulkCreate relies on uk_reminder_sub_date to drop duplicates. IDs are
// written back only for rows that were inserted.
func (r *ReminderRepository) BulkCreate(ctx context.Context, reminders []*subscription.Reminder) (int, error) {
	if len(reminders) == 0 {
		return 0, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)
	inserted := 0
	for _, rem := range reminders {
		model := mappers.ReminderToModel(rem)
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model)
		if result.Error != nil {
			return inserted, fmt.Errorf("failed to create reminder: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			rem.SetID(model.ID)
			inserted++
		}
	}
	return inserted, nil
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uint) (*subscription.Reminder, error) {
	var model models.ReminderModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return mappers.ReminderToDomain(&model)
}

func (r *ReminderRepository) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*subscription.Reminder, error) {
	var reminderModels []*models.ReminderModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("reminder_date ASC").
		Find(&reminderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return mappers.RemindersToDomain(reminderModels)
}

func (r *ReminderRepository) ListDue(ctx context.Context, asOfDate string, retryAfter time.Time) ([]*subscription.Reminder, error) {
	rt := constants.TableReminders
	st := constants.TableSubscriptions
	var reminderModels []*models.ReminderModel
	if err := db.GetTxFromContext(ctx, r.db).
		Table(rt).
		Select(rt+".*").
		Joins("JOIN "+st+" ON "+st+".id = "+rt+".subscription_id").
		Where(rt+".sent = ? AND "+rt+".reminder_date <= ?", false, asOfDate).
		Where("("+rt+".errored_at IS NULL OR "+rt+".errored_at <= ?)", retryAfter).
		Where(st+".status = ?", vo.StatusActive.String()).
		Order(rt + ".reminder_date ASC, " + rt + ".id ASC").
		Find(&reminderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return mappers.RemindersToDomain(reminderModels)
}

func (r *ReminderRepository) MarkSent(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReminderModel{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]any{
			"sent":    true,
			"sent_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ReminderRepository) MarkError(ctx context.Context, id uint, reason string, at time.Time) error {
	reason = utils.TruncateBytes(reason, maxReminderErrorLen)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReminderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error": reason,
			"errored_at": at,
		}).Error; err != nil {
		return fmt.Errorf("failed to record reminder error: %w", err)
	}
	return nil
}
