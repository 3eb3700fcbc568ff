package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type DispatchReminderCommand struct {
	ReminderID uint
	ActorID    string
}

type DispatchReminderResult struct {
	ReminderID uint    `json:"reminder_id"`
	Outcome    Outcome `json:"outcome"`
}

// DispatchReminderUseCase sends one reminder on demand from the admin
// screen, with the same handling as the sweep.
type DispatchReminderUseCase struct {
	dispatcher
	logger logger.Interface
	now    func() time.Time
}

func NewDispatchReminderUseCase(
	reminderRepo subscription.ReminderRepository,
	subscriptionRepo subscription.Repository,
	settingsRepo guild.Repository,
	directory messaging.Directory,
	auditRecorder audit.Recorder,
	logger logger.Interface,
) *DispatchReminderUseCase {
	return &DispatchReminderUseCase{
		dispatcher: dispatcher{
			reminderRepo:     reminderRepo,
			subscriptionRepo: subscriptionRepo,
			settingsRepo:     settingsRepo,
			directory:        directory,
			auditRecorder:    auditRecorder,
		},
		logger: logger,
		now:    defaultClock(),
	}
}

func (uc *DispatchReminderUseCase) Execute(ctx context.Context, cmd DispatchReminderCommand) (*DispatchReminderResult, error) {
	uc.logger.Infow("executing dispatch reminder use case", "reminder_id", cmd.ReminderID, "actor_id", cmd.ActorID)

	r, err := uc.reminderRepo.GetByID(ctx, cmd.ReminderID)
	if err != nil {
		uc.logger.Errorw("failed to get reminder", "reminder_id", cmd.ReminderID, "error", err)
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	if r == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonReminderNotFound, "reminder not found")
	}
	if r.IsSent() {
		return nil, errors.NewPreconditionError(errors.ReasonReminderAlreadySent, "reminder has already been sent")
	}

	sub, err := uc.subscriptionRepo.GetByID(ctx, r.SubscriptionID())
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "subscription_id", r.SubscriptionID(), "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil || !sub.Status().IsActive() {
		return nil, errors.NewPreconditionError(errors.ReasonSubscriptionNotActive, "subscription is not active")
	}

	d, err := uc.deliver(ctx, uc.logger, r, sub, uc.now())
	if err != nil {
		return nil, err
	}
	if d.Outcome == OutcomeFailed {
		return nil, errors.NewUnavailableError("reminder could not be delivered", d.Cause.Error())
	}
	return &DispatchReminderResult{ReminderID: r.ID(), Outcome: d.Outcome}, nil
}
