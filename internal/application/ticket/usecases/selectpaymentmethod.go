package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type SelectPaymentMethodCommand struct {
	TicketID uint
	UserID   string
	MethodID uint
}

type SelectPaymentMethodResult struct {
	TicketID    uint
	MethodID    uint
	MethodLabel string
	Price       money.Money
	Prompt      Prompt
}

type SelectPaymentMethodUseCase struct {
	ticketRepo    ticket.Repository
	settingsRepo  guild.Repository
	catalog       CatalogReader
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewSelectPaymentMethodUseCase(
	ticketRepo ticket.Repository,
	settingsRepo guild.Repository,
	catalog CatalogReader,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *SelectPaymentMethodUseCase {
	return &SelectPaymentMethodUseCase{
		ticketRepo:    ticketRepo,
		settingsRepo:  settingsRepo,
		catalog:       catalog,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *SelectPaymentMethodUseCase) Execute(ctx context.Context, cmd SelectPaymentMethodCommand) (*SelectPaymentMethodResult, error) {
	uc.logger.Infow("executing select payment method use case", "ticket_id", cmd.TicketID, "method_id", cmd.MethodID)

	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := t.CanSelectPaymentMethod(cmd.UserID); err != nil {
		uc.logger.Warnw("payment method selection rejected", "ticket_id", t.ID(), "user_id", cmd.UserID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	plan, err := uc.catalog.Plan(ctx, *t.PlanID())
	if err != nil {
		return nil, err
	}
	method, err := uc.catalog.PaymentMethod(ctx, cmd.MethodID)
	if err != nil {
		return nil, err
	}
	if err := methodAvailable(t, method); err != nil {
		return nil, err
	}
	price, err := uc.catalog.ResolvePrice(ctx, plan, method.ID())
	if err != nil {
		return nil, err
	}

	ok, err := uc.ticketRepo.SetPaymentMethod(ctx, t.ID(), method.ID())
	if err != nil {
		uc.logger.Errorw("failed to set ticket payment method", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to set payment method: %w", err)
	}
	if !ok {
		return nil, concurrentUpdate()
	}

	settings := guildSettings(ctx, uc.settingsRepo, t.GuildID(), uc.logger)
	prompt := postPrompt(ctx, uc.directory, uc.logger, t, instructionsPrompt(t, plan, method, price, settings.Locale()))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionMethodSelected, uc.now(), map[string]any{
		"method_id": method.ID(),
		"method":    method.Label(),
		"price":     price.String(),
	}))

	uc.logger.Infow("payment method selected", "ticket_id", t.ID(), "method_id", method.ID(), "price", price.String())

	return &SelectPaymentMethodResult{
		TicketID:    t.ID(),
		MethodID:    method.ID(),
		MethodLabel: method.Label(),
		Price:       price,
		Prompt:      prompt,
	}, nil
}

func methodAvailable(t *ticket.Ticket, method *catalog.PaymentMethod) error {
	if method.GuildID() != t.GuildID() {
		return errors.NewNotFoundErrorWithReason(errors.ReasonMethodNotFound, "payment method not found")
	}
	if !method.IsEnabled() {
		return errors.NewPreconditionError(errors.ReasonOptionUnavailable, "that payment method is no longer available")
	}
	return nil
}
