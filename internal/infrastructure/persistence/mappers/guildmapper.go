package mappers

import (
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
)

func GuildSettingsToModel(s *guild.Settings) *models.GuildSettingsModel {
	return &models.GuildSettingsModel{
		GuildID:      s.GuildID(),
		ReminderDays: s.ReminderDays(),
		StaffRoleIDs: s.StaffRoleIDs(),
		LogChannelID: s.LogChannelID(),
		Currency:     s.Currency(),
		Locale:       s.Locale(),
	}
}

func GuildSettingsToDomain(m *models.GuildSettingsModel) (*guild.Settings, error) {
	return guild.ReconstructSettings(m.GuildID, m.ReminderDays, m.StaffRoleIDs, m.LogChannelID, m.Currency, m.Locale)
}
