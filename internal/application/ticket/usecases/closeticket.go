package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type CloseTicketCommand struct {
	TicketID uint
	UserID   string
}

type CloseTicketResult struct {
	TicketID    uint
	ClosedAt    time.Time
	DeleteAfter time.Duration
}

// CloseTicketUseCase closes a ticket and schedules its channel for deletion.
// Closing is one-way.
type CloseTicketUseCase struct {
	ticketRepo    ticket.Repository
	catalog       CatalogReader
	staff         *StaffChecker
	directory     messaging.Directory
	cleanup       ChannelCleanup
	deleteDelay   time.Duration
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewCloseTicketUseCase(
	ticketRepo ticket.Repository,
	catalog CatalogReader,
	staff *StaffChecker,
	directory messaging.Directory,
	cleanup ChannelCleanup,
	deleteDelay time.Duration,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *CloseTicketUseCase {
	return &CloseTicketUseCase{
		ticketRepo:    ticketRepo,
		catalog:       catalog,
		staff:         staff,
		directory:     directory,
		cleanup:       cleanup,
		deleteDelay:   deleteDelay,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *CloseTicketUseCase) Execute(ctx context.Context, cmd CloseTicketCommand) (*CloseTicketResult, error) {
	uc.logger.Infow("executing close ticket use case", "ticket_id", cmd.TicketID, "user_id", cmd.UserID)

	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}

	isStaff := false
	if !t.IsOpener(cmd.UserID) && t.Status().IsOpen() {
		panel, err := uc.catalog.Panel(ctx, t.PanelID())
		if err != nil {
			return nil, err
		}
		if isStaff, err = uc.staff.IsStaff(ctx, panel, cmd.UserID); err != nil {
			return nil, err
		}
	}
	if err := t.CanClose(cmd.UserID, isStaff); err != nil {
		uc.logger.Warnw("close rejected", "ticket_id", t.ID(), "user_id", cmd.UserID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	now := uc.now()
	ok, err := uc.ticketRepo.Close(ctx, t.ID(), cmd.UserID, now)
	if err != nil {
		uc.logger.Errorw("failed to close ticket", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to close ticket: %w", err)
	}
	if !ok {
		return nil, errors.NewPreconditionError(errors.ReasonTicketClosed, "this ticket is already closed")
	}

	postPrompt(ctx, uc.directory, uc.logger, t, closedNotice(cmd.UserID, uc.deleteDelay))

	if err := uc.cleanup.ScheduleDeletion(ctx, t.ID(), t.ChannelID(), uc.deleteDelay); err != nil {
		uc.logger.Errorw("failed to schedule channel deletion", "ticket_id", t.ID(), "channel_id", t.ChannelID(), "error", err)
	}

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionTicketClosed, now, map[string]any{
		"stage":    t.Stage().String(),
		"by_staff": isStaff,
	}))

	uc.logger.Infow("ticket closed successfully", "ticket_id", t.ID(), "closed_by", cmd.UserID)

	return &CloseTicketResult{TicketID: t.ID(), ClosedAt: now, DeleteAfter: uc.deleteDelay}, nil
}

// DeleteTicketChannelUseCase runs after the close grace delay. It removes
// the channel, then the ticket row. A failed channel deletion is audited and
// leaves the row in place; it is not retried.
type DeleteTicketChannelUseCase struct {
	ticketRepo    ticket.Repository
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
}

func NewDeleteTicketChannelUseCase(
	ticketRepo ticket.Repository,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *DeleteTicketChannelUseCase {
	return &DeleteTicketChannelUseCase{
		ticketRepo:    ticketRepo,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
	}
}

func (uc *DeleteTicketChannelUseCase) Execute(ctx context.Context, ticketID uint, channelID string) error {
	t, err := uc.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil {
		return nil
	}
	if !t.Status().IsClosed() {
		uc.logger.Warnw("skipping deletion of open ticket", "ticket_id", ticketID)
		return nil
	}

	if err := uc.directory.DeleteChannel(ctx, channelID); err != nil && !stderrors.Is(err, messaging.ErrNotFound) {
		uc.logger.Errorw("failed to delete ticket channel", "ticket_id", ticketID, "channel_id", channelID, "error", err)
		auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, "", audit.ActionChannelDeleteFail, time.Time{}, map[string]any{
			"channel_id": channelID,
			"error":      err.Error(),
		}))
		return err
	}

	if err := uc.ticketRepo.Delete(ctx, ticketID); err != nil {
		uc.logger.Errorw("failed to delete ticket row", "ticket_id", ticketID, "error", err)
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	uc.logger.Infow("ticket channel deleted", "ticket_id", ticketID, "channel_id", channelID)
	return nil
}

// ResumeDeletionsUseCase reschedules channel deletion for tickets that were
// closed before a restart. Scheduled deletions live only in the process, so
// a closed row still present at startup has none pending.
type ResumeDeletionsUseCase struct {
	ticketRepo  ticket.Repository
	cleanup     ChannelCleanup
	deleteDelay time.Duration
	logger      logger.Interface
	now         func() time.Time
}

func NewResumeDeletionsUseCase(
	ticketRepo ticket.Repository,
	cleanup ChannelCleanup,
	deleteDelay time.Duration,
	logger logger.Interface,
) *ResumeDeletionsUseCase {
	return &ResumeDeletionsUseCase{
		ticketRepo:  ticketRepo,
		cleanup:     cleanup,
		deleteDelay: deleteDelay,
		logger:      logger,
		now:         defaultClock(),
	}
}

// Execute returns how many deletions were scheduled. The remaining grace
// delay is honored; overdue tickets are deleted immediately.
func (uc *ResumeDeletionsUseCase) Execute(ctx context.Context) (int, error) {
	closed, err := uc.ticketRepo.ListClosed(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list closed tickets", "error", err)
		return 0, fmt.Errorf("failed to list closed tickets: %w", err)
	}

	now := uc.now()
	scheduled := 0
	for _, t := range closed {
		delay := time.Duration(0)
		if closedAt := t.ClosedAt(); closedAt != nil {
			delay = max(closedAt.Add(uc.deleteDelay).Sub(now), 0)
		}
		if err := uc.cleanup.ScheduleDeletion(ctx, t.ID(), t.ChannelID(), delay); err != nil {
			uc.logger.Errorw("failed to reschedule channel deletion", "ticket_id", t.ID(), "channel_id", t.ChannelID(), "error", err)
			continue
		}
		scheduled++
	}

	if scheduled > 0 {
		uc.logger.Infow("rescheduled pending channel deletions", "count", scheduled)
	}
	return scheduled, nil
}
