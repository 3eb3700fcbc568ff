package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

type GuildSettingsModel struct {
	GuildID      string                      `gorm:"primarykey;size:32"`
	ReminderDays datatypes.JSONSlice[int]    `gorm:"type:json"`
	StaffRoleIDs datatypes.JSONSlice[string] `gorm:"type:json"`
	LogChannelID string                      `gorm:"size:32"`
	Currency     string                      `gorm:"size:3;not null;default:INR"`
	Locale       string                      `gorm:"size:16;not null;default:en-IN"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (GuildSettingsModel) TableName() string {
	return constants.TableGuildSettings
}
