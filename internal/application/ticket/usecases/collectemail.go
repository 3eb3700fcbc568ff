package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/auditing"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	subusecases "github.com/orris-inc/orrisdesk/internal/application/subscription/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type CollectEmailCommand struct {
	TicketID uint   `json:"ticket_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

type CollectEmailResult struct {
	TicketID        uint
	SubscriptionID  uint
	SubscriptionSID string
	EndDate         time.Time
	// Created is false when the ticket was already completed.
	Created bool
	Prompt  Prompt
}

// CollectEmailUseCase completes the workflow: it stores the opener's email
// and materializes the subscription in one transaction. Re-entry after
// completion returns the existing subscription.
type CollectEmailUseCase struct {
	ticketRepo    ticket.Repository
	settingsRepo  guild.Repository
	materializer  SubscriptionMaterializer
	directory     messaging.Directory
	receipts      ReceiptSender
	txManager     TransactionRunner
	auditRecorder audit.Recorder
	logger        logger.Interface
	now           func() time.Time
}

func NewCollectEmailUseCase(
	ticketRepo ticket.Repository,
	settingsRepo guild.Repository,
	materializer SubscriptionMaterializer,
	directory messaging.Directory,
	receipts ReceiptSender,
	txManager TransactionRunner,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *CollectEmailUseCase {
	return &CollectEmailUseCase{
		ticketRepo:    ticketRepo,
		settingsRepo:  settingsRepo,
		materializer:  materializer,
		directory:     directory,
		receipts:      receipts,
		txManager:     txManager,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           defaultClock(),
	}
}

func (uc *CollectEmailUseCase) Execute(ctx context.Context, cmd CollectEmailCommand) (*CollectEmailResult, error) {
	uc.logger.Infow("executing collect email use case", "ticket_id", cmd.TicketID, "user_id", cmd.UserID)

	cmd.Email = strings.TrimSpace(cmd.Email)
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	t, err := loadTicket(ctx, uc.ticketRepo, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := t.CanCollectEmail(cmd.UserID); err != nil {
		uc.logger.Warnw("email collection rejected", "ticket_id", t.ID(), "user_id", cmd.UserID, "reason", errors.ReasonOf(err))
		return nil, err
	}

	// The first stored email is the subscription's email.
	email := cmd.Email
	if t.Email() != nil {
		email = *t.Email()
	}

	var sub *subusecases.MaterializeSubscriptionResult
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if t.Email() == nil {
			if err := uc.ticketRepo.SetEmail(txCtx, t.ID(), email); err != nil {
				return fmt.Errorf("failed to store email: %w", err)
			}
		}
		res, err := uc.materializer.Execute(txCtx, subusecases.MaterializeSubscriptionCommand{
			TicketID:        t.ID(),
			GuildID:         t.GuildID(),
			UserID:          t.OpenerID(),
			PlanID:          *t.PlanID(),
			PaymentMethodID: *t.PaymentMethodID(),
			Email:           email,
		})
		if err != nil {
			return err
		}
		sub = res
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to complete ticket", "ticket_id", t.ID(), "error", err)
		return nil, err
	}

	result := &CollectEmailResult{
		TicketID:        t.ID(),
		SubscriptionID:  sub.SubscriptionID,
		SubscriptionSID: sub.SubscriptionSID,
		EndDate:         sub.EndDate,
		Created:         sub.Created,
	}
	if !sub.Created {
		uc.logger.Infow("ticket already completed", "ticket_id", t.ID(), "subscription_id", sub.SubscriptionID)
		return result, nil
	}

	settings := guildSettings(ctx, uc.settingsRepo, t.GuildID(), uc.logger)
	result.Prompt = postPrompt(ctx, uc.directory, uc.logger, t,
		completedNotice(t, sub.SubscriptionSID, sub.PlanName, sub.Price, sub.EndDate, settings.Locale()))

	if uc.receipts != nil {
		err := uc.receipts.SendReceipt(ctx, Receipt{
			To:              email,
			GuildID:         t.GuildID(),
			SubscriptionSID: sub.SubscriptionSID,
			PlanName:        sub.PlanName,
			Price:           sub.Price.Format(settings.Locale()),
			StartDate:       sub.StartDate,
			EndDate:         sub.EndDate,
		})
		if err != nil {
			uc.logger.Warnw("failed to send receipt email", "ticket_id", t.ID(), "subscription_id", sub.SubscriptionID, "error", err)
		}
	}

	auditing.Record(ctx, uc.auditRecorder, uc.logger, ticketEntry(t, cmd.UserID, audit.ActionEmailCollected, uc.now(), map[string]any{
		"subscription_id": sub.SubscriptionID,
	}))

	uc.logger.Infow("ticket completed", "ticket_id", t.ID(), "subscription_id", sub.SubscriptionID)
	return result, nil
}
