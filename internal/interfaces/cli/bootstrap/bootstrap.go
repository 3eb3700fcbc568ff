// Package bootstrap builds the process dependencies shared by the CLI
// commands: configuration, logging, the database, redis and the application
// services.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appcatalog "github.com/orris-inc/orrisdesk/internal/application/catalog"
	"github.com/orris-inc/orrisdesk/internal/application/subscription"
	"github.com/orris-inc/orrisdesk/internal/application/ticket"
	ticketusecases "github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/cache"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/config"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/database"
	discordinfra "github.com/orris-inc/orrisdesk/internal/infrastructure/discord"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/email"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/metrics"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/repository"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/scheduler"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/services/markdown"
)

// sweepLockTTL bounds how long a crashed sweeper can block the others.
const sweepLockTTL = 15 * time.Minute

// Options are the persistent flags every command accepts.
type Options struct {
	Env        string
	ConfigPath string
}

// Runtime holds the infrastructure handles of one command invocation.
type Runtime struct {
	Config *config.Config
	Logger logger.Interface
	DB     *gorm.DB
	Redis  *redis.Client
}

// Init loads the configuration and sets up logging, the business timezone
// and the database.
func Init(opts Options) (*Runtime, error) {
	env := opts.Env
	if v := os.Getenv("ENV"); v != "" {
		env = v
	}

	cfg, err := config.Load(env, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(cfg.Server.Mode)

	if err := logger.Init(&cfg.Logger, cfg.Server.IsDebug()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gormDB, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Runtime{Config: cfg, Logger: log, DB: gormDB}, nil
}

// ConnectRedis connects when redis is enabled and is a no-op otherwise.
func (r *Runtime) ConnectRedis(ctx context.Context) error {
	if !r.Config.Redis.Enabled {
		r.Logger.Infow("redis disabled, using in-process guards")
		return nil
	}
	client, err := cache.NewRedisClient(ctx, &r.Config.Redis)
	if err != nil {
		return err
	}
	r.Redis = client
	r.Logger.Infow("redis connected", "addr", r.Config.Redis.GetAddr())
	return nil
}

func (r *Runtime) Close() {
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.Logger.Warnw("failed to close redis", "error", err)
		}
	}
	if err := database.Close(r.DB); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}

// Services is the wired application.
type Services struct {
	Metrics       *metrics.Metrics
	Session       *discordgo.Session
	Directory     *discordinfra.Directory
	Catalog       *appcatalog.Store
	Markdown      markdown.MarkdownService
	Subscriptions *subscription.ServiceDDD
	Tickets       *ticket.ServiceDDD
	Scheduler     *scheduler.SchedulerManager
	RateLimiter   ratelimit.RateLimiter
}

// BuildServices wires repositories, the Discord directory and both
// application services. The session is not opened; REST calls work without
// the gateway.
func (r *Runtime) BuildServices() (*Services, error) {
	cfg := r.Config
	log := r.Logger

	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("discord.token is required")
	}
	session, err := discordinfra.NewSession(cfg.Discord.Token)
	if err != nil {
		return nil, err
	}
	directory := discordinfra.NewDirectory(session, log.Named("discord"))

	ticketRepo := repository.NewTicketRepository(r.DB)
	paymentRepo := repository.NewPaymentRepository(r.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(r.DB)
	reminderRepo := repository.NewReminderRepository(r.DB)
	settingsRepo := repository.NewGuildSettingsRepository(r.DB)
	auditRepo := repository.NewAuditRepository(r.DB)
	catalogStore := appcatalog.NewStore(repository.NewCatalogRepository(r.DB))
	txManager := db.NewTransactionManager(r.DB)

	subDeps := subscription.Dependencies{
		SubscriptionRepo: subscriptionRepo,
		ReminderRepo:     reminderRepo,
		SettingsRepo:     settingsRepo,
		Catalog:          catalogStore,
		Directory:        directory,
		AuditRecorder:    auditRepo,
		SweepLockTTL:     sweepLockTTL,
	}
	var cooldown ticketusecases.Cooldown = cache.NewMemoryGuard()
	var limiter ratelimit.RateLimiter = ratelimit.NewMemoryRateLimiter()
	if r.Redis != nil {
		guard := cache.NewRedisGuard(r.Redis)
		cooldown = guard
		subDeps.SweepLock = guard
		limiter = ratelimit.NewRedisRateLimiter(r.Redis)
	}
	subscriptionSvc := subscription.NewServiceDDD(subDeps, log.Named("subscription"))

	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ticketDeps := ticket.Dependencies{
		TicketRepo:         ticketRepo,
		PaymentRepo:        paymentRepo,
		SettingsRepo:       settingsRepo,
		Catalog:            catalogStore,
		Directory:          directory,
		Cooldown:           cooldown,
		Cleanup:            schedulerManager,
		Materializer:       subscriptionSvc.Materializer(),
		TxManager:          txManager,
		AuditRecorder:      auditRepo,
		ChannelPrefix:      cfg.Workflow.ChannelNamePrefix,
		ChannelDeleteDelay: cfg.Workflow.ChannelDeleteDelay(),
	}
	if sender := email.NewSMTPReceiptSender(cfg.Email, log.Named("email")); sender != nil {
		ticketDeps.Receipts = sender
	}
	ticketSvc := ticket.NewServiceDDD(ticketDeps, log.Named("ticket"))
	schedulerManager.SetChannelDeleter(ticketSvc.DeleteChannel)

	return &Services{
		Metrics:       metrics.NewWithRegistry(),
		Session:       session,
		Directory:     directory,
		Catalog:       catalogStore,
		Markdown:      markdown.NewMarkdownService(),
		Subscriptions: subscriptionSvc,
		Tickets:       ticketSvc,
		Scheduler:     schedulerManager,
		RateLimiter:   limiter,
	}, nil
}

// GinMode maps an environment name onto a gin mode.
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	case "development", "dev", "debug":
		return "debug"
	default:
		return "release"
	}
}
