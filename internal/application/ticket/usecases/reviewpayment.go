package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type ConfirmPaymentCommand struct {
	TicketID uint
	StaffID  string
}

type ConfirmPaymentResult struct {
	TicketID    uint
	PaymentID   uint
	ConfirmedAt time.Time
	Prompt      Prompt
}

// ConfirmPaymentUseCase is staff attesting that the claimed payment arrived.
// The ticket flag is set with a compare-and-swap, so of two concurrent
// confirmations only the first succeeds.
type ConfirmPaymentUseCase struct {
	ticketRepo    ticket.Repository
	paymentRepo   payment.Repository
	catalog       CatalogReader
	staff         *StaffChecker
	directory     messaging.Directory
	txManager     TransactionRunner
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewConfirmPaymentUseCase(
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	catalog CatalogReader,
	staff *StaffChecker,
	directory messaging.Directory,
	txManager TransactionRunner,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		ticketRepo:    ticketRepo,
		paymentRepo:   paymentRepo,
		catalog:       catalog,
		staff:         staff,
		directory:     directory,
		txManager:     txManager,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	uc.logger.Infow("executing confirm payment use case", "ticket_id", cmd.TicketID, "staff_id", cmd.StaffID)

	t, pending, err := loadForReview(ctx, uc.ticketRepo, uc.paymentRepo, uc.catalog, uc.staff, cmd.TicketID, cmd.StaffID)
	if err != nil {
		uc.logger.Warnw("payment confirmation rejected", "ticket_id", cmd.TicketID, "staff_id", cmd.StaffID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	now := uc.now()
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		ok, err := uc.ticketRepo.ConfirmPayment(txCtx, t.ID(), cmd.StaffID, now)
		if err != nil {
			return fmt.Errorf("failed to confirm ticket payment: %w", err)
		}
		if !ok {
			return errors.NewPreconditionError(errors.ReasonPaymentAlreadyConfirmed, "payment for this ticket is already confirmed")
		}
		if _, err := uc.paymentRepo.Confirm(txCtx, pending.ID(), cmd.StaffID, now); err != nil {
			return fmt.Errorf("failed to confirm payment record: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.IsPreconditionError(err) {
			uc.logger.Warnw("payment already confirmed by another staff member", "ticket_id", t.ID(), "staff_id", cmd.StaffID)
			return nil, err
		}
		uc.logger.Errorw("failed to confirm payment", "ticket_id", t.ID(), "error", err)
		return nil, err
	}

	prompt := postPrompt(ctx, uc.directory, uc.logger, t, emailPrompt(t, cmd.StaffID))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.StaffID, audit.ActionPaymentConfirmed, now, map[string]any{
		"payment_id": pending.ID(),
		"amount":     pending.Amount().String(),
	}))

	uc.logger.Infow("payment confirmed", "ticket_id", t.ID(), "payment_id", pending.ID(), "staff_id", cmd.StaffID)

	return &ConfirmPaymentResult{
		TicketID:    t.ID(),
		PaymentID:   pending.ID(),
		ConfirmedAt: now,
		Prompt:      prompt,
	}, nil
}

type DenyPaymentCommand struct {
	TicketID uint
	StaffID  string
	Reason   string
}

type DenyPaymentResult struct {
	TicketID uint
	Prompt   Prompt
}

// DenyPaymentUseCase tells the opener the claim could not be verified. No
// ticket or payment field changes; the member may claim again.
type DenyPaymentUseCase struct {
	ticketRepo    ticket.Repository
	paymentRepo   payment.Repository
	catalog       CatalogReader
	staff         *StaffChecker
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewDenyPaymentUseCase(
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	catalog CatalogReader,
	staff *StaffChecker,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *DenyPaymentUseCase {
	return &DenyPaymentUseCase{
		ticketRepo:    ticketRepo,
		paymentRepo:   paymentRepo,
		catalog:       catalog,
		staff:         staff,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *DenyPaymentUseCase) Execute(ctx context.Context, cmd DenyPaymentCommand) (*DenyPaymentResult, error) {
	uc.logger.Infow("executing deny payment use case", "ticket_id", cmd.TicketID, "staff_id", cmd.StaffID)

	t, pending, err := loadForReview(ctx, uc.ticketRepo, uc.paymentRepo, uc.catalog, uc.staff, cmd.TicketID, cmd.StaffID)
	if err != nil {
		uc.logger.Warnw("payment denial rejected", "ticket_id", cmd.TicketID, "staff_id", cmd.StaffID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	prompt := postPrompt(ctx, uc.directory, uc.logger, t, deniedNotice(t, cmd.StaffID, cmd.Reason))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.StaffID, audit.ActionPaymentDenied, uc.now(), map[string]any{
		"payment_id": pending.ID(),
		"reason":     cmd.Reason,
	}))

	uc.logger.Infow("payment denied", "ticket_id", t.ID(), "payment_id", pending.ID(), "staff_id", cmd.StaffID)

	return &DenyPaymentResult{TicketID: t.ID(), Prompt: prompt}, nil
}

// loadForReview applies the checks shared by confirm and deny: the ticket
// exists, the actor is staff, the ticket is reviewable and a claim is pending.
func loadForReview(
	ctx context.Context,
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	catalog CatalogReader,
	staff *StaffChecker,
	ticketID uint,
	staffID string,
) (*ticket.Ticket, *payment.Payment, error) {
	t, err := loadTicket(ctx, ticketRepo, ticketID)
	if err != nil {
		return nil, nil, err
	}
	panel, err := catalog.Panel(ctx, t.PanelID())
	if err != nil {
		return nil, nil, err
	}
	if err := staff.requireStaff(ctx, panel, staffID); err != nil {
		return nil, nil, err
	}
	if err := t.CanReviewPayment(); err != nil {
		return nil, nil, err
	}

	pending, err := paymentRepo.GetLatestPendingByTicket(ctx, t.ID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}
	if pending == nil {
		return nil, nil, errors.NewPreconditionError(errors.ReasonPaymentNotClaimed, "the member has not claimed a payment yet")
	}
	// A claim made before the member changed plan or method does not pay for the current selection.
	if !pending.Covers(t.PlanID(), t.PaymentMethodID()) {
		return nil, nil, errors.NewPreconditionError(errors.ReasonPaymentNotClaimed,
			"the member changed their selection after claiming payment and must claim again")
	}
	return t, pending, nil
}
