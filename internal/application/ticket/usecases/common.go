package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const entityTicket = "ticket"

// Prompt is the next-step message a transition posts in the ticket channel.
// Posted is false when the post failed; the caller may show Message to the
// acting user instead.
type Prompt struct {
	Message messaging.Message
	Posted  bool
}

func loadTicket(ctx context.Context, repo ticket.Repository, id uint) (*ticket.Ticket, error) {
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonTicketNotFound, "ticket not found")
	}
	return t, nil
}

// concurrentUpdate is returned when a conditional patch matched no row
// because another action changed the ticket first.
func concurrentUpdate() error {
	return errors.NewConflictError("the ticket changed while processing, please try again")
}

func postPrompt(ctx context.Context, dir messaging.Directory, log logger.Interface, t *ticket.Ticket, msg messaging.Message) Prompt {
	if err := dir.SendToChannel(ctx, t.ChannelID(), msg); err != nil {
		log.Warnw("failed to post ticket prompt",
			"ticket_id", t.ID(),
			"channel_id", t.ChannelID(),
			"error", err,
		)
		return Prompt{Message: msg}
	}
	return Prompt{Message: msg, Posted: true}
}

// guildSettings returns stored settings or the defaults.
func guildSettings(ctx context.Context, repo guild.Repository, guildID string, log logger.Interface) *guild.Settings {
	s, err := repo.Get(ctx, guildID)
	if err != nil {
		log.Warnw("failed to load guild settings, using defaults", "guild_id", guildID, "error", err)
	}
	if s == nil {
		return guild.DefaultSettings(guildID)
	}
	return s
}

func ticketEntry(t *ticket.Ticket, actorID string, action audit.Action, now time.Time, details map[string]any) *audit.Entry {
	return &audit.Entry{
		GuildID:    t.GuildID(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityTicket,
		EntityID:   t.ID(),
		Details:    details,
		CreatedAt:  now,
	}
}

func uintValue(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func defaultClock() func() time.Time {
	return biztime.NowUTC
}
