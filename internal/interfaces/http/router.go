// Package http exposes the admin API, health check and Prometheus metrics.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/metrics"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/handlers/admin"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const shutdownTimeout = 10 * time.Second

// RouterDeps carries the handlers and middleware the router mounts.
type RouterDeps struct {
	AuthMiddleware      *middleware.AuthMiddleware
	SubscriptionHandler *admin.SubscriptionHandler
	ReminderHandler     *admin.ReminderHandler
	TicketHandler       *admin.TicketHandler
	CatalogHandler      *admin.CatalogHandler
	Metrics             *metrics.Metrics
}

// Router represents the HTTP router configuration
type Router struct {
	engine *gin.Engine
	deps   RouterDeps
	logger logger.Interface

	mu     sync.Mutex
	server *http.Server
}

func NewRouter(deps RouterDeps, log logger.Interface) *Router {
	engine := gin.New()
	r := &Router{engine: engine, deps: deps, logger: log}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.Use(middleware.CustomLogger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Metrics(r.deps.Metrics))

	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if reg := r.deps.Metrics.Registry(); reg != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := r.engine.Group("/api/admin")
	api.Use(r.deps.AuthMiddleware.RequireAdmin())

	subs := api.Group("/subscriptions")
	{
		subs.GET("", r.deps.SubscriptionHandler.List)
		subs.GET("/expiring", r.deps.SubscriptionHandler.ListExpiring)
		subs.GET("/stats", r.deps.SubscriptionHandler.Stats)
		subs.GET("/:id", r.deps.SubscriptionHandler.Get)
		subs.POST("/:id/extend", r.deps.SubscriptionHandler.Extend)
		subs.POST("/:id/cancel", r.deps.SubscriptionHandler.Cancel)
	}

	api.POST("/reminders/:id/dispatch", r.deps.ReminderHandler.Dispatch)
	tickets := api.Group("/tickets")
	{
		tickets.GET("", r.deps.TicketHandler.ByChannel)
		tickets.GET("/stats", r.deps.TicketHandler.Stats)
		tickets.GET("/:id", r.deps.TicketHandler.Get)
	}
	api.GET("/payment-methods/:id/preview", r.deps.CatalogHandler.PreviewPaymentMethod)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run serves on addr until Shutdown is called.
func (r *Router) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	r.mu.Lock()
	r.server = srv
	r.mu.Unlock()

	r.logger.Infow("admin HTTP server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	srv := r.server
	r.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
