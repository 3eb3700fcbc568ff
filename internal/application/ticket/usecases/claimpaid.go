package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/id"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type ClaimPaidCommand struct {
	TicketID uint
	UserID   string
}

type ClaimPaidResult struct {
	TicketID   uint
	PaymentID  uint
	PaymentSID string
	Amount     string
	Prompt     Prompt
}

// ClaimPaidUseCase records the opener's claim to have paid and asks staff to
// review it. The ticket itself is not changed. Claiming again with the same
// selections reuses the pending payment.
type ClaimPaidUseCase struct {
	ticketRepo    ticket.Repository
	paymentRepo   payment.Repository
	settingsRepo  guild.Repository
	catalog       CatalogReader
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewClaimPaidUseCase(
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	settingsRepo guild.Repository,
	catalog CatalogReader,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *ClaimPaidUseCase {
	return &ClaimPaidUseCase{
		ticketRepo:    ticketRepo,
		paymentRepo:   paymentRepo,
		settingsRepo:  settingsRepo,
		catalog:       catalog,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *ClaimPaidUseCase) Execute(ctx context.Context, cmd ClaimPaidCommand) (*ClaimPaidResult, error) {
	uc.logger.Infow("executing claim paid use case", "ticket_id", cmd.TicketID, "user_id", cmd.UserID)

	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := t.CanClaimPaid(cmd.UserID); err != nil {
		uc.logger.Warnw("payment claim rejected", "ticket_id", t.ID(), "user_id", cmd.UserID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	plan, err := uc.catalog.Plan(ctx, *t.PlanID())
	if err != nil {
		return nil, err
	}
	method, err := uc.catalog.PaymentMethod(ctx, *t.PaymentMethodID())
	if err != nil {
		return nil, err
	}
	amount, err := uc.catalog.ResolvePrice(ctx, plan, method.ID())
	if err != nil {
		return nil, err
	}

	p, err := uc.paymentRepo.GetLatestPendingByTicket(ctx, t.ID())
	if err != nil {
		uc.logger.Errorw("failed to look up pending payment", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}
	now := uc.now()
	if p == nil || !p.Covers(t.PlanID(), t.PaymentMethodID()) {
		p, err = uc.createPayment(ctx, t, plan.ID(), method.ID(), amount, now)
		if err != nil {
			return nil, err
		}
	}

	settings := guildSettings(ctx, uc.settingsRepo, t.GuildID(), uc.logger)
	staffRoles := settings.StaffRoleIDs()
	if panel, err := uc.catalog.Panel(ctx, t.PanelID()); err == nil {
		staffRoles = staffRoleSet(panel.StaffRoleID(), staffRoles)
	}
	prompt := postPrompt(ctx, uc.directory, uc.logger, t,
		reviewPrompt(t, plan.Name(), method.Label(), p.Amount(), settings.Locale(), staffRoles))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionPaymentClaimed, now, map[string]any{
		"payment_id": p.ID(),
		"amount":     p.Amount().String(),
	}))

	uc.logger.Infow("payment claimed", "ticket_id", t.ID(), "payment_id", p.ID(), "amount", p.Amount().String())

	return &ClaimPaidResult{
		TicketID:   t.ID(),
		PaymentID:  p.ID(),
		PaymentSID: p.SID(),
		Amount:     p.Amount().Format(settings.Locale()),
		Prompt:     prompt,
	}, nil
}

func (uc *ClaimPaidUseCase) createPayment(ctx context.Context, t *ticket.Ticket, planID, methodID uint, amount money.Money, now time.Time) (*payment.Payment, error) {
	sid, err := id.NewPaymentSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment SID: %w", err)
	}
	p, err := payment.NewPayment(payment.NewPaymentParams{
		SID:      sid,
		TicketID: t.ID(),
		GuildID:  t.GuildID(),
		UserID:   t.OpenerID(),
		PlanID:   planID,
		MethodID: methodID,
		Amount:   amount,
		Now:      now,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.paymentRepo.Create(ctx, p); err != nil {
		uc.logger.Errorw("failed to save payment", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	return p, nil
}
