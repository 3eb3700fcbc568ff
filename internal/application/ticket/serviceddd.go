package ticket

import (
	"context"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/application/ticket/dto"
	"github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// Dependencies wires the ticket workflow.
type Dependencies struct {
	TicketRepo    ticket.Repository
	PaymentRepo   payment.Repository
	SettingsRepo  guild.Repository
	Catalog       usecases.CatalogReader
	Directory     messaging.Directory
	Cooldown      usecases.Cooldown
	Cleanup       usecases.ChannelCleanup
	Materializer  usecases.SubscriptionMaterializer
	Receipts      usecases.ReceiptSender
	TxManager     usecases.TransactionRunner
	AuditRecorder audit.Recorder

	ChannelPrefix      string
	ChannelDeleteDelay time.Duration
}

// ServiceDDD aggregates the ticket workflow transitions and queries. It is
// the single entry point for the chat front-end.
type ServiceDDD struct {
	openUC          *usecases.OpenTicketUseCase
	selectPlanUC    *usecases.SelectPlanUseCase
	selectMethodUC  *usecases.SelectPaymentMethodUseCase
	claimPaidUC     *usecases.ClaimPaidUseCase
	confirmUC       *usecases.ConfirmPaymentUseCase
	denyUC          *usecases.DenyPaymentUseCase
	collectEmailUC  *usecases.CollectEmailUseCase
	closeUC         *usecases.CloseTicketUseCase
	claimUC         *usecases.ClaimTicketUseCase
	deleteChannelUC *usecases.DeleteTicketChannelUseCase
	resumeUC        *usecases.ResumeDeletionsUseCase
	getUC           *usecases.GetTicketUseCase
	statsUC         *usecases.GetTicketStatsUseCase
}

func NewServiceDDD(d Dependencies, log logger.Interface) *ServiceDDD {
	staff := usecases.NewStaffChecker(d.Directory, d.SettingsRepo, log)
	return &ServiceDDD{
		openUC: usecases.NewOpenTicketUseCase(
			d.TicketRepo, d.SettingsRepo, d.Catalog, d.Directory, d.Cooldown, d.AuditRecorder, d.ChannelPrefix, log,
		),
		selectPlanUC: usecases.NewSelectPlanUseCase(
			d.TicketRepo, d.SettingsRepo, d.Catalog, d.Directory, d.AuditRecorder, log,
		),
		selectMethodUC: usecases.NewSelectPaymentMethodUseCase(
			d.TicketRepo, d.SettingsRepo, d.Catalog, d.Directory, d.AuditRecorder, log,
		),
		claimPaidUC: usecases.NewClaimPaidUseCase(
			d.TicketRepo, d.PaymentRepo, d.SettingsRepo, d.Catalog, d.Directory, d.AuditRecorder, log,
		),
		confirmUC: usecases.NewConfirmPaymentUseCase(
			d.TicketRepo, d.PaymentRepo, d.Catalog, staff, d.Directory, d.TxManager, d.AuditRecorder, log,
		),
		denyUC: usecases.NewDenyPaymentUseCase(
			d.TicketRepo, d.PaymentRepo, d.Catalog, staff, d.Directory, d.AuditRecorder, log,
		),
		collectEmailUC: usecases.NewCollectEmailUseCase(
			d.TicketRepo, d.SettingsRepo, d.Materializer, d.Directory, d.Receipts, d.TxManager, d.AuditRecorder, log,
		),
		closeUC: usecases.NewCloseTicketUseCase(
			d.TicketRepo, d.Catalog, staff, d.Directory, d.Cleanup, d.ChannelDeleteDelay, d.AuditRecorder, log,
		),
		claimUC: usecases.NewClaimTicketUseCase(
			d.TicketRepo, d.Catalog, staff, d.Directory, d.AuditRecorder, log,
		),
		deleteChannelUC: usecases.NewDeleteTicketChannelUseCase(d.TicketRepo, d.Directory, d.AuditRecorder, log),
		resumeUC:        usecases.NewResumeDeletionsUseCase(d.TicketRepo, d.Cleanup, d.ChannelDeleteDelay, log),
		getUC:           usecases.NewGetTicketUseCase(d.TicketRepo, log),
		statsUC:         usecases.NewGetTicketStatsUseCase(d.TicketRepo, log),
	}
}

func (s *ServiceDDD) Open(ctx context.Context, cmd usecases.OpenTicketCommand) (*usecases.OpenTicketResult, error) {
	return s.openUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) SelectPlan(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error) {
	return s.selectPlanUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) SelectPaymentMethod(ctx context.Context, cmd usecases.SelectPaymentMethodCommand) (*usecases.SelectPaymentMethodResult, error) {
	return s.selectMethodUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) ClaimPaid(ctx context.Context, cmd usecases.ClaimPaidCommand) (*usecases.ClaimPaidResult, error) {
	return s.claimPaidUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) ConfirmPayment(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error) {
	return s.confirmUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) DenyPayment(ctx context.Context, cmd usecases.DenyPaymentCommand) (*usecases.DenyPaymentResult, error) {
	return s.denyUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) CollectEmail(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error) {
	return s.collectEmailUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) Close(ctx context.Context, cmd usecases.CloseTicketCommand) (*usecases.CloseTicketResult, error) {
	return s.closeUC.Execute(ctx, cmd)
}

func (s *ServiceDDD) Claim(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error) {
	return s.claimUC.Execute(ctx, cmd)
}

// DeleteChannel is invoked by the scheduler once the close grace delay ends.
func (s *ServiceDDD) DeleteChannel(ctx context.Context, ticketID uint, channelID string) error {
	return s.deleteChannelUC.Execute(ctx, ticketID, channelID)
}

// ResumeDeletions reschedules deletion of tickets closed before a restart.
func (s *ServiceDDD) ResumeDeletions(ctx context.Context) (int, error) {
	return s.resumeUC.Execute(ctx)
}

func (s *ServiceDDD) Get(ctx context.Context, query usecases.GetTicketQuery) (*dto.TicketDTO, error) {
	return s.getUC.Execute(ctx, query)
}

func (s *ServiceDDD) Stats(ctx context.Context, guildID string) (*dto.TicketStatsDTO, error) {
	return s.statsUC.Execute(ctx, guildID)
}
