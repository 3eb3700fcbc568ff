package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

type GuildSettingsRepository struct {
	db *gorm.DB
}

func NewGuildSettingsRepository(db *gorm.DB) guild.Repository {
	return &GuildSettingsRepository{db: db}
}

func (r *GuildSettingsRepository) Get(ctx context.Context, guildID string) (*guild.Settings, error) {
	var model models.GuildSettingsModel
	if err := db.GetTxFromContext(ctx, r.db).Where("guild_id = ?", guildID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	return mappers.GuildSettingsToDomain(&model)
}

func (r *GuildSettingsRepository) Upsert(ctx context.Context, s *guild.Settings) error {
	model := mappers.GuildSettingsToModel(s)
	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reminder_days", "staff_role_ids", "log_channel_id", "currency", "locale", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert guild settings: %w", err)
	}
	return nil
}
