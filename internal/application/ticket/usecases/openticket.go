package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/id"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type OpenTicketCommand struct {
	GuildID  string `json:"guild_id" validate:"required"`
	PanelID  uint   `json:"panel_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name"`
}

type OpenTicketResult struct {
	TicketID  uint
	TicketSID string
	ChannelID string
	Prompt    Prompt
}

// OpenTicketUseCase creates a private channel and its ticket. The two are
// created together: a failed insert deletes the channel again.
type OpenTicketUseCase struct {
	ticketRepo    ticket.Repository
	settingsRepo  guild.Repository
	catalog       CatalogReader
	directory     messaging.Directory
	cooldown      Cooldown
	auditRecorder audit.Recorder
	channelPrefix string
	logger        logger.Interface
	now           func() time.Time
}

func NewOpenTicketUseCase(
	ticketRepo ticket.Repository,
	settingsRepo guild.Repository,
	catalog CatalogReader,
	directory messaging.Directory,
	cooldown Cooldown,
	auditRecorder audit.Recorder,
	channelPrefix string,
	logger logger.Interface,
) *OpenTicketUseCase {
	if channelPrefix == "" {
		channelPrefix = "ticket"
	}
	return &OpenTicketUseCase{
		ticketRepo:    ticketRepo,
		settingsRepo:  settingsRepo,
		catalog:       catalog,
		directory:     directory,
		cooldown:      cooldown,
		auditRecorder: auditRecorder,
		channelPrefix: channelPrefix,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *OpenTicketUseCase) Execute(ctx context.Context, cmd OpenTicketCommand) (*OpenTicketResult, error) {
	uc.logger.Infow("executing open ticket use case", "panel_id", cmd.PanelID, "user_id", cmd.UserID)

	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	panel, err := uc.catalog.Panel(ctx, cmd.PanelID)
	if err != nil {
		return nil, err
	}
	if panel.GuildID() != cmd.GuildID {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonPanelNotFound, "panel not found")
	}
	if !panel.IsEnabled() {
		return nil, errors.NewPreconditionError(errors.ReasonPanelDisabled, "this panel is not accepting tickets right now")
	}

	open, err := uc.ticketRepo.CountOpenByUserPanel(ctx, cmd.UserID, panel.ID())
	if err != nil {
		uc.logger.Errorw("failed to count open tickets", "user_id", cmd.UserID, "panel_id", panel.ID(), "error", err)
		return nil, fmt.Errorf("failed to count open tickets: %w", err)
	}
	if open >= int64(panel.MaxTicketsPerUser()) {
		uc.logger.Warnw("open ticket limit reached", "user_id", cmd.UserID, "panel_id", panel.ID(), "open", open)
		return nil, errors.NewPreconditionError(errors.ReasonLimitReached,
			fmt.Sprintf("you already have %d open ticket(s) here, close one first", open))
	}

	opened := false
	if panel.Cooldown() > 0 && uc.cooldown != nil {
		key := fmt.Sprintf("orrisdesk:cooldown:%d:%s", panel.ID(), cmd.UserID)
		acquired, err := uc.cooldown.Acquire(ctx, key, panel.Cooldown())
		switch {
		case err != nil:
			// Cooldown is a courtesy limit; an unavailable store does not block opening.
			uc.logger.Warnw("cooldown check failed, allowing open", "user_id", cmd.UserID, "error", err)
		case !acquired:
			return nil, errors.NewPreconditionError(errors.ReasonCooldownActive,
				fmt.Sprintf("please wait %s between tickets", biztime.HumanDuration(panel.Cooldown())))
		default:
			// Only a ticket that was actually opened starts the cooldown.
			defer func() {
				if opened {
					return
				}
				if err := uc.cooldown.Release(ctx, key); err != nil {
					uc.logger.Warnw("failed to release cooldown after failed open", "user_id", cmd.UserID, "error", err)
				}
			}()
		}
	}

	plans, err := uc.catalog.EnabledPlans(ctx, cmd.GuildID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, errors.NewPreconditionError(errors.ReasonOptionUnavailable, "no plans are available right now")
	}

	settings := guildSettings(ctx, uc.settingsRepo, cmd.GuildID, uc.logger)
	staffRoles := staffRoleSet(panel.StaffRoleID(), settings.StaffRoleIDs())

	channelID, err := uc.directory.CreatePrivateChannel(ctx, messaging.ChannelSpec{
		GuildID:      cmd.GuildID,
		ParentID:     panel.CategoryID(),
		Name:         channelName(uc.channelPrefix, cmd.UserName, cmd.UserID),
		Topic:        fmt.Sprintf("%s ticket for <@%s>", panel.Name(), cmd.UserID),
		MemberID:     cmd.UserID,
		StaffRoleIDs: staffRoles,
	})
	if err != nil {
		uc.logger.Errorw("failed to create ticket channel", "user_id", cmd.UserID, "panel_id", panel.ID(), "error", err)
		return nil, errors.NewUnavailableError("could not create your ticket channel, please try again")
	}

	now := uc.now()
	t, err := uc.createTicket(ctx, cmd, panel.ID(), channelID, now)
	if err != nil {
		if delErr := uc.directory.DeleteChannel(ctx, channelID); delErr != nil {
			uc.logger.Errorw("failed to remove channel after ticket insert failure",
				"channel_id", channelID,
				"error", delErr,
			)
		}
		return nil, err
	}

	opened = true

	prompt := postPrompt(ctx, uc.directory, uc.logger, t, planPrompt(t, plans, settings.Locale(), staffRoles))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionTicketOpened, now, map[string]any{
		"panel_id":   panel.ID(),
		"channel_id": channelID,
	}))

	uc.logger.Infow("ticket opened successfully",
		"ticket_id", t.ID(),
		"ticket_sid", t.SID(),
		"channel_id", channelID,
		"user_id", cmd.UserID,
	)

	return &OpenTicketResult{
		TicketID:  t.ID(),
		TicketSID: t.SID(),
		ChannelID: channelID,
		Prompt:    prompt,
	}, nil
}

func (uc *OpenTicketUseCase) createTicket(ctx context.Context, cmd OpenTicketCommand, panelID uint, channelID string, now time.Time) (*ticket.Ticket, error) {
	sid, err := id.NewTicketSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket SID: %w", err)
	}
	t, err := ticket.NewTicket(sid, cmd.GuildID, panelID, cmd.UserID, channelID, now)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.ticketRepo.Create(ctx, t); err != nil {
		uc.logger.Errorw("failed to save ticket", "channel_id", channelID, "error", err)
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}
	return t, nil
}

func staffRoleSet(panelRole string, guildRoles []string) []string {
	out := make([]string, 0, len(guildRoles)+1)
	if panelRole != "" {
		out = append(out, panelRole)
	}
	for _, r := range guildRoles {
		if r != "" && r != panelRole {
			out = append(out, r)
		}
	}
	return out
}

var channelNameUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// channelName builds a lowercase channel name from the member's name,
// falling back to the user ID.
func channelName(prefix, userName, userID string) string {
	name := channelNameUnsafe.ReplaceAllString(strings.ToLower(userName), "")
	if name == "" {
		name = userID
	}
	full := prefix + "-" + name
	if len(full) > 90 {
		full = full[:90]
	}
	return full
}
