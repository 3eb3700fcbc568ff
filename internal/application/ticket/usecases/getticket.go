package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/orrisdesk/internal/application/ticket/dto"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type GetTicketQuery struct {
	TicketID  uint
	ChannelID string
}

type GetTicketUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewGetTicketUseCase(ticketRepo ticket.Repository, logger logger.Interface) *GetTicketUseCase {
	return &GetTicketUseCase{ticketRepo: ticketRepo, logger: logger}
}

// Execute looks the ticket up by ID, or by channel when no ID is given.
func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDTO, error) {
	var (
		t   *ticket.Ticket
		err error
	)
	switch {
	case query.TicketID != 0:
		t, err = uc.ticketRepo.GetByID(ctx, query.TicketID)
	case query.ChannelID != "":
		t, err = uc.ticketRepo.GetByChannel(ctx, query.ChannelID)
	default:
		return nil, errors.NewValidationError("ticket ID or channel ID is required")
	}
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", query.TicketID, "channel_id", query.ChannelID, "error", err)
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonTicketNotFound, "ticket not found")
	}
	return dto.ToTicketDTO(t), nil
}

type GetTicketStatsUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewGetTicketStatsUseCase(ticketRepo ticket.Repository, logger logger.Interface) *GetTicketStatsUseCase {
	return &GetTicketStatsUseCase{ticketRepo: ticketRepo, logger: logger}
}

func (uc *GetTicketStatsUseCase) Execute(ctx context.Context, guildID string) (*dto.TicketStatsDTO, error) {
	if guildID == "" {
		return nil, errors.NewValidationError("guild_id is required")
	}
	counts, err := uc.ticketRepo.StatusCounts(ctx, guildID)
	if err != nil {
		uc.logger.Errorw("failed to count tickets", "guild_id", guildID, "error", err)
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	out := &dto.TicketStatsDTO{
		GuildID: guildID,
		Open:    counts[vo.StatusOpen],
		Closed:  counts[vo.StatusClosed],
	}
	out.Total = out.Open + out.Closed
	return out, nil
}
