package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// CatalogReader is the part of the catalog store materialization needs.
type CatalogReader interface {
	Plan(ctx context.Context, id uint) (*catalog.Plan, error)
	PaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error)
	ResolvePrice(ctx context.Context, plan *catalog.Plan, methodID uint) (money.Money, error)
}

// reminderOffsets reads the guild's reminder offsets, falling back to the
// defaults when the guild has no settings row or the read fails.
func reminderOffsets(ctx context.Context, settings guild.Repository, guildID string, log logger.Interface) []int {
	s, err := settings.Get(ctx, guildID)
	if err != nil {
		log.Warnw("failed to load guild settings, using default reminder days", "guild_id", guildID, "error", err)
		return guild.DefaultSettings(guildID).ReminderDays()
	}
	if s == nil {
		return guild.DefaultSettings(guildID).ReminderDays()
	}
	return s.ReminderDays()
}

// scheduleReminders plans and bulk-inserts reminders for sub's current end date.
func scheduleReminders(
	ctx context.Context,
	repo subscription.ReminderRepository,
	sub *subscription.Subscription,
	offsets []int,
	now func() time.Time,
) (int, error) {
	planned := subscription.PlanReminders(sub, offsets, now())
	if len(planned) == 0 {
		return 0, nil
	}
	return repo.BulkCreate(ctx, planned)
}

func defaultClock() func() time.Time {
	return biztime.NowUTC
}
