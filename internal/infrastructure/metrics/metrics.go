// Package metrics exposes Prometheus counters for workflow interactions, the
// reminder sweep and the admin API. A nil *Metrics records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

const namespace = "orrisdesk"

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry      *prometheus.Registry
	interactions  *prometheus.CounterVec
	sweepRuns     *prometheus.CounterVec
	sweepItems    *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// New registers every collector on registry.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		interactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Workflow actions by kind, outcome and rejection reason",
			},
			[]string{"action", "outcome", "reason"},
		),
		sweepRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_runs_total",
				Help:      "Reminder sweeps by result",
			},
			[]string{"result"},
		),
		sweepItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_items_total",
				Help:      "Reminders and subscriptions handled by sweeps",
			},
			[]string{"outcome"},
		),
		sweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of reminder sweeps",
				Buckets:   prometheus.ExponentialBuckets(0.05, 4, 7),
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Admin API requests",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Admin API latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// NewWithRegistry builds a fresh registry carrying the Go and process
// collectors plus the orrisdesk metrics.
func NewWithRegistry() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(registry)
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveInteraction counts one workflow action. Precondition and not-found
// failures count as rejections labelled with their reason.
func (m *Metrics) ObserveInteraction(action string, err error) {
	if m == nil {
		return
	}
	outcome, reason := classify(err)
	m.interactions.WithLabelValues(action, outcome, reason).Inc()
}

func classify(err error) (string, string) {
	if err == nil {
		return OutcomeOK, ""
	}
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return OutcomeError, ""
	}
	switch appErr.Type {
	case errors.ErrorTypeInternal, errors.ErrorTypeUnavailable:
		return OutcomeError, string(appErr.Reason)
	default:
		reason := string(appErr.Reason)
		if reason == "" {
			reason = string(appErr.Type)
		}
		return OutcomeRejected, reason
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
