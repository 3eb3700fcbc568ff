package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type ClaimTicketCommand struct {
	TicketID uint
	StaffID  string
}

type ClaimTicketResult struct {
	TicketID  uint
	ClaimedBy string
}

// ClaimTicketUseCase assigns a staff member to a ticket. The assignment is
// advisory and does not gate any other transition.
type ClaimTicketUseCase struct {
	ticketRepo    ticket.Repository
	catalog       CatalogReader
	staff         *StaffChecker
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewClaimTicketUseCase(
	ticketRepo ticket.Repository,
	catalog CatalogReader,
	staff *StaffChecker,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ClaimTicketUseCase {
	return &ClaimTicketUseCase{
		ticketRepo:    ticketRepo,
		catalog:       catalog,
		staff:         staff,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *ClaimTicketUseCase) Execute(ctx context.Context, cmd ClaimTicketCommand) (*ClaimTicketResult, error) {
	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	panel, err := uc.catalog.Panel(ctx, t.PanelID())
	if err != nil {
		return nil, err
	}
	if err := uc.staff.requireStaff(ctx, panel, cmd.StaffID); err != nil {
		return nil, err
	}
	if err := t.CanClaim(); err != nil {
		uc.logger.Warnw("claim rejected", "ticket_id", t.ID(), "staff_id", cmd.StaffID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	ok, err := uc.ticketRepo.Claim(ctx, t.ID(), cmd.StaffID)
	if err != nil {
		uc.logger.Errorw("failed to claim ticket", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to claim ticket: %w", err)
	}
	if !ok {
		return nil, errors.NewPreconditionError(errors.ReasonAlreadyClaimed, "this ticket was just claimed by someone else")
	}

	postPrompt(ctx, uc.directory, uc.logger, t, claimedNotice(cmd.StaffID))
	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.StaffID, audit.ActionTicketClaimed, uc.now(), nil))

	uc.logger.Infow("ticket claimed", "ticket_id", t.ID(), "staff_id", cmd.StaffID)
	return &ClaimTicketResult{TicketID: t.ID(), ClaimedBy: cmd.StaffID}, nil
}
