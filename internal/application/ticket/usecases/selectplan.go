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
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type SelectPlanCommand struct {
	TicketID uint
	UserID   string
	PlanID   uint
}

type SelectPlanResult struct {
	TicketID uint
	PlanID   uint
	PlanName string
	Prompt   Prompt
}

// SelectPlanUseCase records the opener's plan choice and presents the
// payment methods priced for it. Choosing again replaces the plan and
// clears the payment method.
type SelectPlanUseCase struct {
	ticketRepo    ticket.Repository
	settingsRepo  guild.Repository
	catalog       CatalogReader
	directory     messaging.Directory
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewSelectPlanUseCase(
	ticketRepo ticket.Repository,
	settingsRepo guild.Repository,
	catalog CatalogReader,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *SelectPlanUseCase {
	return &SelectPlanUseCase{
		ticketRepo:    ticketRepo,
		settingsRepo:  settingsRepo,
		catalog:       catalog,
		directory:     directory,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *SelectPlanUseCase) Execute(ctx context.Context, cmd SelectPlanCommand) (*SelectPlanResult, error) {
	uc.logger.Infow("executing select plan use case", "ticket_id", cmd.TicketID, "plan_id", cmd.PlanID)

	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := t.CanSelectPlan(cmd.UserID); err != nil {
		uc.logger.Warnw("plan selection rejected", "ticket_id", t.ID(), "user_id", cmd.UserID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	plan, err := uc.catalog.Plan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if err := planAvailable(t, plan); err != nil {
		return nil, err
	}

	ok, err := uc.ticketRepo.SetPlan(ctx, t.ID(), plan.ID())
	if err != nil {
		uc.logger.Errorw("failed to set ticket plan", "ticket_id", t.ID(), "error", err)
		return nil, fmt.Errorf("failed to set plan: %w", err)
	}
	if !ok {
		return nil, concurrentUpdate()
	}

	methods, err := uc.catalog.EnabledMethods(ctx, plan)
	if err != nil {
		return nil, err
	}
	settings := guildSettings(ctx, uc.settingsRepo, t.GuildID(), uc.logger)
	prompt := postPrompt(ctx, uc.directory, uc.logger, t, methodPrompt(t, plan, methods, settings.Locale()))

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionPlanSelected, uc.now(), map[string]any{
		"plan_id": plan.ID(),
		"plan":    plan.Name(),
	}))

	uc.logger.Infow("plan selected", "ticket_id", t.ID(), "plan_id", plan.ID())

	return &SelectPlanResult{
		TicketID: t.ID(),
		PlanID:   plan.ID(),
		PlanName: plan.Name(),
		Prompt:   prompt,
	}, nil
}

// planAvailable rejects plans of another guild and disabled plans.
func planAvailable(t *ticket.Ticket, plan *catalog.Plan) error {
	if plan.GuildID() != t.GuildID() {
		return errors.NewNotFoundErrorWithReason(errors.ReasonPlanNotFound, "plan not found")
	}
	if !plan.IsEnabled() {
		return errors.NewPreconditionError(errors.ReasonOptionUnavailable, "that plan is no longer available")
	}
	return nil
}
