package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/id"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// MaterializeSubscriptionCommand carries a completed ticket's selections.
type MaterializeSubscriptionCommand struct {
	TicketID        uint
	GuildID         string
	UserID          string
	PlanID          uint
	PaymentMethodID uint
	Email           string
}

type MaterializeSubscriptionResult struct {
	SubscriptionID   uint
	SubscriptionSID  string
	PlanName         string
	Price            money.Money
	StartDate        time.Time
	EndDate          time.Time
	RemindersCreated int
	// Created is false when the ticket already had a subscription.
	Created bool
}

// MaterializeSubscriptionUseCase turns a completed ticket into its
// subscription and reminders. It creates at most one subscription per ticket.
type MaterializeSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	reminderRepo     subscription.ReminderRepository
	catalog          CatalogReader
	settingsRepo     guild.Repository
	auditRecorder    audit.Recorder
	logger           logger.Interface
	now              func() time.Time
}

func NewMaterializeSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	reminderRepo subscription.ReminderRepository,
	catalog CatalogReader,
	settingsRepo guild.Repository,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *MaterializeSubscriptionUseCase {
	return &MaterializeSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		reminderRepo:     reminderRepo,
		catalog:          catalog,
		settingsRepo:     settingsRepo,
		auditRecorder:    auditRecorder,
		logger:           logger,
		now:              defaultClock(),
	}
}

func (uc *MaterializeSubscriptionUseCase) Execute(ctx context.Context, cmd MaterializeSubscriptionCommand) (*MaterializeSubscriptionResult, error) {
	uc.logger.Infow("executing materialize subscription use case", "ticket_id", cmd.TicketID, "plan_id", cmd.PlanID)

	existing, err := uc.subscriptionRepo.GetByTicketID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to look up subscription for ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("ticket already has a subscription", "ticket_id", cmd.TicketID, "subscription_id", existing.ID())
		return existingResult(existing), nil
	}

	plan, err := uc.catalog.Plan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	method, err := uc.catalog.PaymentMethod(ctx, cmd.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	price, err := uc.catalog.ResolvePrice(ctx, plan, method.ID())
	if err != nil {
		return nil, err
	}

	sid, err := id.NewSubscriptionSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription SID: %w", err)
	}

	now := uc.now()
	sub, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
		SID:                sid,
		GuildID:            cmd.GuildID,
		UserID:             cmd.UserID,
		TicketID:           cmd.TicketID,
		PlanID:             plan.ID(),
		Email:              cmd.Email,
		PlanName:           plan.Name(),
		DurationDays:       plan.DurationDays(),
		Price:              price,
		PaymentMethodLabel: method.Label(),
		Start:              now,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		if errors.IsDuplicateError(err) {
			// A concurrent submission for the same ticket won the unique index.
			winner, getErr := uc.subscriptionRepo.GetByTicketID(ctx, cmd.TicketID)
			if getErr == nil && winner != nil {
				return existingResult(winner), nil
			}
		}
		uc.logger.Errorw("failed to create subscription", "ticket_id", cmd.TicketID, "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	offsets := reminderOffsets(ctx, uc.settingsRepo, cmd.GuildID, uc.logger)
	created, err := scheduleReminders(ctx, uc.reminderRepo, sub, offsets, uc.now)
	if err != nil {
		uc.logger.Errorw("failed to create reminders", "subscription_id", sub.ID(), "error", err)
		return nil, fmt.Errorf("failed to create reminders: %w", err)
	}

	auditing.Record(ctx, uc.auditRecorder, uc.logger, &audit.Entry{
		GuildID:    cmd.GuildID,
		ActorID:    cmd.UserID,
		Action:     audit.ActionSubscriptionCreated,
		EntityType: "subscription",
		EntityID:   sub.ID(),
		Details: map[string]any{
			"ticket_id": cmd.TicketID,
			"plan":      plan.Name(),
			"price":     price.String(),
			"end_date":  sub.EndDate(),
			"reminders": created,
		},
		CreatedAt: now,
	})

	uc.logger.Infow("subscription created successfully",
		"subscription_id", sub.ID(),
		"subscription_sid", sub.SID(),
		"ticket_id", cmd.TicketID,
		"end_date", sub.EndDate(),
		"reminders", created,
	)

	return &MaterializeSubscriptionResult{
		SubscriptionID:   sub.ID(),
		SubscriptionSID:  sub.SID(),
		PlanName:         sub.PlanName(),
		Price:            sub.Price(),
		StartDate:        sub.StartDate(),
		EndDate:          sub.EndDate(),
		RemindersCreated: created,
		Created:          true,
	}, nil
}

func existingResult(s *subscription.Subscription) *MaterializeSubscriptionResult {
	return &MaterializeSubscriptionResult{
		SubscriptionID:  s.ID(),
		SubscriptionSID: s.SID(),
		PlanName:        s.PlanName(),
		Price:           s.Price(),
		StartDate:       s.StartDate(),
		EndDate:         s.EndDate(),
	}
}
