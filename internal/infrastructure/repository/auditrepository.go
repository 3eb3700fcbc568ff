package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

// AuditRepository appends audit rows. Entries recorded inside a use case
// transaction commit or roll back with it.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ audit.Recorder = (*AuditRepository)(nil)

func (r *AuditRepository) Record(ctx context.Context, e *audit.Entry) error {
	model := &models.AuditLogModel{
		GuildID:    e.GuildID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		CreatedAt:  e.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = biztime.NowUTC()
	}
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		model.Details = datatypes.JSON(raw)
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// AuditQuery filters List. Zero fields are ignored.
type AuditQuery struct {
	GuildID    string
	EntityType string
	EntityID   uint
	Limit      int
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, q AuditQuery) ([]*audit.Entry, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.AuditLogModel{})
	if q.GuildID != "" {
		query = query.Where("guild_id = ?", q.GuildID)
	}
	if q.EntityType != "" {
		query = query.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != 0 {
		query = query.Where("entity_id = ?", q.EntityID)
	}
	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	var rows []*models.AuditLogModel
	if err := query.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*audit.Entry, 0, len(rows))
	for _, m := range rows {
		e := &audit.Entry{
			GuildID:    m.GuildID,
			ActorID:    m.ActorID,
			Action:     audit.Action(m.Action),
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			CreatedAt:  m.CreatedAt,
		}
		if len(m.Details) > 0 {
			if err := json.Unmarshal(m.Details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details %d: %w", m.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
