package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/auth"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/metrics"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/migration"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/orrisdesk/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/orrisdesk/internal/interfaces/discord"
	httpRouter "github.com/orris-inc/orrisdesk/internal/interfaces/http"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/handlers/admin"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/orrisdesk/internal/shared/goroutine"
)

const shutdownTimeout = 30 * time.Second

var autoMigrate bool

// NewCommand returns `serve`, which runs the Discord bot, the scheduler and
// the admin API until SIGINT or SIGTERM.
func NewCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot, scheduler and admin API",
		Long:  `Connect to Discord, start the reminder sweep and serve the admin HTTP API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations on startup")

	return cmd
}

func run(opts bootstrap.Options) error {
	rt, err := bootstrap.Init(opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.Logger
	cfg := rt.Config

	log.Infow("starting orrisdesk",
		"mode", cfg.Server.Mode,
		"database_driver", cfg.Database.Driver,
		"auto_migrate", autoMigrate,
	)

	if err := handleMigrations(rt); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = rt.ConnectRedis(ctx)
	cancel()
	if err != nil {
		return err
	}

	svcs, err := rt.BuildServices()
	if err != nil {
		return err
	}

	sweep := metrics.NewInstrumentedSweep(svcs.Subscriptions, svcs.Metrics)
	if err := svcs.Scheduler.RegisterSweepJob(sweep, cfg.Scheduler.ReminderInterval(), cfg.Scheduler.JobTimeout()); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	resumeCtx, cancelResume := context.WithTimeout(context.Background(), 30*time.Second)
	_, err = svcs.Tickets.ResumeDeletions(resumeCtx)
	cancelResume()
	if err != nil {
		log.Warnw("failed to resume pending channel deletions", "error", err)
	}

	dispatcher := discord.NewDispatcher(svcs.Tickets, svcs.Catalog, svcs.Directory, svcs.Metrics, log.Named("interactions")).
		WithRateLimit(svcs.RateLimiter, ratelimit.Limits{
			PerMinute: cfg.Workflow.InteractionsPerMinute,
			PerHour:   cfg.Workflow.InteractionsPerHour,
		})
	bot := discord.NewBot(svcs.Session, dispatcher, cfg.Discord.ApplicationID, log.Named("bot"))

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	jwtService := auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL())
	router := httpRouter.NewRouter(httpRouter.RouterDeps{
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtService, log),
		SubscriptionHandler: admin.NewSubscriptionHandler(svcs.Subscriptions, log),
		ReminderHandler:     admin.NewReminderHandler(svcs.Subscriptions, log),
		TicketHandler:       admin.NewTicketHandler(svcs.Tickets),
		CatalogHandler:      admin.NewCatalogHandler(svcs.Catalog, svcs.Markdown, log),
		Metrics:             svcs.Metrics,
	}, log.Named("http"))

	svcs.Scheduler.Start()
	defer func() {
		if err := svcs.Scheduler.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	if err := bot.Start(); err != nil {
		return err
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			log.Errorw("failed to close discord session", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	goroutine.SafeGo(log, "admin-http", func() {
		log.Infow("admin API listening", "address", cfg.Server.GetAddr())
		if err := router.Run(cfg.Server.GetAddr()); err != nil {
			serverErr <- err
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	case err := <-serverErr:
		log.Errorw("admin API stopped unexpectedly", "error", err)
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Errorw("admin API forced to shutdown", "error", err)
	}

	log.Infow("orrisdesk exited gracefully")
	return nil
}

func handleMigrations(rt *bootstrap.Runtime) error {
	strategy := migration.ForDriver(rt.Config.Database.Driver, rt.Logger)

	if autoMigrate {
		if rt.Config.Server.Mode == gin.ReleaseMode {
			rt.Logger.Warnw("auto-migration is enabled in release mode")
		}
		if err := strategy.Up(rt.DB); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		return nil
	}

	version, err := strategy.Version(rt.DB)
	if err != nil {
		rt.Logger.Warnw("failed to check migration status", "error", err)
		return nil
	}
	rt.Logger.Infow("current migration version", "strategy", strategy.Name(), "version", version)
	return nil
}
