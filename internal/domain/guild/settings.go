// Package guild holds per-community settings consulted by the workflow and
// the subscription lifecycle.
package guild

import (
	"fmt"
	"slices"
	"strings"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

// Settings is the guild-wide configuration. A guild without a stored row
// behaves as DefaultSettings.
type Settings struct {
	guildID      string
	reminderDays []int
	staffRoleIDs []string
	logChannelID string
	currency     string
	locale       string
}

func DefaultSettings(guildID string) *Settings {
	return &Settings{
		guildID:      guildID,
		reminderDays: slices.Clone(constants.DefaultReminderDays),
		currency:     constants.DefaultCurrency,
		locale:       constants.DefaultLocale,
	}
}

func ReconstructSettings(guildID string, reminderDays []int, staffRoleIDs []string, logChannelID, currency, locale string) (*Settings, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	s := DefaultSettings(guildID)
	if len(reminderDays) > 0 {
		if err := s.SetReminderDays(reminderDays); err != nil {
			return nil, err
		}
	}
	s.staffRoleIDs = slices.Clone(staffRoleIDs)
	s.logChannelID = logChannelID
	if currency != "" {
		s.currency = strings.ToUpper(currency)
	}
	if locale != "" {
		s.locale = locale
	}
	return s, nil
}

func (s *Settings) GuildID() string        { return s.guildID }
func (s *Settings) ReminderDays() []int    { return slices.Clone(s.reminderDays) }
func (s *Settings) StaffRoleIDs() []string { return slices.Clone(s.staffRoleIDs) }
func (s *Settings) LogChannelID() string   { return s.logChannelID }
func (s *Settings) Currency() string       { return s.currency }
func (s *Settings) Locale() string         { return s.locale }

// SetReminderDays replaces the reminder offsets. Offsets must be positive;
// duplicates are dropped and the result is sorted descending.
func (s *Settings) SetReminderDays(days []int) error {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d <= 0 {
			return fmt.Errorf("reminder offset must be positive, got %d", d)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	slices.Reverse(out)
	s.reminderDays = out
	return nil
}

func (s *Settings) SetStaffRoleIDs(ids []string) {
	s.staffRoleIDs = slices.Clone(ids)
}

// HasStaffRole reports whether any of roleIDs is a guild staff role.
func (s *Settings) HasStaffRole(roleIDs []string) bool {
	for _, r := range roleIDs {
		if slices.Contains(s.staffRoleIDs, r) {
			return true
		}
	}
	return false
}
