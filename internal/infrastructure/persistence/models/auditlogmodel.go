package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

type AuditLogModel struct {
	ID         uint           `gorm:"primarykey"`
	GuildID    string         `gorm:"size:32;index:idx_audit_guild_created,priority:1"`
	ActorID    string         `gorm:"size:32"`
	Action     string         `gorm:"not null;size:64;index:idx_audit_action"`
	EntityType string         `gorm:"not null;size:32;index:idx_audit_entity,priority:1"`
	EntityID   uint           `gorm:"index:idx_audit_entity,priority:2"`
	Details    datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_guild_created,priority:2"`
}

func (AuditLogModel) TableName() string {
	return constants.TableAuditLogs
}
