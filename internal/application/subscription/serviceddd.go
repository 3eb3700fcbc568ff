package subscription

import (
	"context"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	reminderusecases "github.com/orris-inc/orrisdesk/internal/application/reminder/usecases"
	"github.com/orris-inc/orrisdesk/internal/application/subscription/dto"
	"github.com/orris-inc/orrisdesk/internal/application/subscription/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type Dependencies struct {
	SubscriptionRepo subscription.Repository
	ReminderRepo     subscription.ReminderRepository
	SettingsRepo     guild.Repository
	Catalog          usecases.CatalogReader
	Directory        messaging.Directory
	AuditRecorder    audit.Recorder
	// SweepLock is optional; without it every process sweeps.
	SweepLock    reminderusecases.SweepLock
	SweepLockTTL time.Duration
}

// ServiceDDD aggregates the subscription lifecycle, its queries and the
// reminder sweep.
type ServiceDDD struct {
	materializeUC *usecases.MaterializeSubscriptionUseCase
	extendUC      *usecases.ExtendSubscriptionUseCase
	cancelUC      *usecases.CancelSubscriptionUseCase
	expireUC      *usecases.ExpireSubscriptionsUseCase
	getUC         *usecases.GetSubscriptionUseCase
	listUC        *usecases.ListSubscriptionsUseCase
	expiringUC    *usecases.ListExpiringSubscriptionsUseCase
	statsUC       *usecases.GetSubscriptionStatsUseCase
	sweepUC       *reminderusecases.ProcessRemindersUseCase
	dispatchUC    *reminderusecases.DispatchReminderUseCase
}

func NewServiceDDD(d Dependencies, log logger.Interface) *ServiceDDD {
	expireUC := usecases.NewExpireSubscriptionsUseCase(d.SubscriptionRepo, d.AuditRecorder, log)
	return &ServiceDDD{
		materializeUC: usecases.NewMaterializeSubscriptionUseCase(
			d.SubscriptionRepo, d.ReminderRepo, d.Catalog, d.SettingsRepo, d.AuditRecorder, log,
		),
		extendUC: usecases.NewExtendSubscriptionUseCase(
			d.SubscriptionRepo, d.ReminderRepo, d.SettingsRepo, d.AuditRecorder, log,
		),
		cancelUC:   usecases.NewCancelSubscriptionUseCase(d.SubscriptionRepo, d.AuditRecorder, log),
		expireUC:   expireUC,
		getUC:      usecases.NewGetSubscriptionUseCase(d.SubscriptionRepo, d.ReminderRepo, log),
		listUC:     usecases.NewListSubscriptionsUseCase(d.SubscriptionRepo, log),
		expiringUC: usecases.NewListExpiringSubscriptionsUseCase(d.SubscriptionRepo, log),
		statsUC:    usecases.NewGetSubscriptionStatsUseCase(d.SubscriptionRepo, log),
		sweepUC: reminderusecases.NewProcessRemindersUseCase(
			d.ReminderRepo, d.SubscriptionRepo, d.SettingsRepo, d.Directory, expireUC,
			d.SweepLock, d.SweepLockTTL, d.AuditRecorder, log.Named("sweep"),
		),
		dispatchUC: reminderusecases.NewDispatchReminderUseCase(
			d.ReminderRepo, d.SubscriptionRepo, d.SettingsRepo, d.Directory, d.AuditRecorder, log,
		),
	}
}

// Materializer is handed to the ticket workflow for email collection.
func (s *ServiceDDD) Materializer() *usecases.MaterializeSubscriptionUseCase {
	return s.materializeUC
}

// SweepJob is the scheduler's periodic batch job.
func (s *ServiceDDD) SweepJob() *reminderusecases.ProcessRemindersUseCase {
	return s.sweepUC
}

func (s *ServiceDDD) Extend(ctx context.Context, cmd usecases.ExtendSubscriptionCommand) (*usecases.ExtendSubscriptionResult, error) {
	return s.extendUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) Cancel(ctx context.Context, cmd usecases.CancelSubscriptionCommand) error {
	return s.cancelUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) ExpireLapsed(ctx context.Context) (int, error) {
	return s.expireUC.Execute(ctx)
}

func (s *ServiceDDD) Get(ctx context.Context, id uint) (*usecases.GetSubscriptionResult, error) {
	return s.getUC.Execute(ctx, id)
}

func (s *ServiceDDD) List(ctx context.Context, query usecases.ListSubscriptionsQuery) (*usecases.ListSubscriptionsResult, error) {
	return s.listUC.Execute(ctx, query)
}

func (s *ServiceDDD) ListExpiring(ctx context.Context, query usecases.ListExpiringQuery) ([]*dto.SubscriptionDTO, error) {
	return s.expiringUC.Execute(ctx, query)
}

func (s *ServiceDDD) Stats(ctx context.Context, guildID string) (*dto.StatsDTO, error) {
	return s.statsUC.Execute(ctx, guildID)
}

func (s *ServiceDDD) Sweep(ctx context.Context) (*reminderusecases.SweepResult, error) {
	return s.sweepUC.Sweep(ctx)
}

func (s *ServiceDDD) DispatchReminder(ctx context.Context, cmd reminderusecases.DispatchReminderCommand) (*reminderusecases.DispatchReminderResult, error) {
	return s.dispatchUC.Execute(ctx, cmd)
}
