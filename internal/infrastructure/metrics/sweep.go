package metrics

import (
	"context"
	"time"

	reminderusecases "github.com/orris-inc/orrisdesk/internal/application/reminder/usecases"
)

type Sweeper interface {
	Sweep(ctx context.Context) (*reminderusecases.SweepResult, error)
}

// InstrumentedSweep runs a sweep and records its result. It satisfies the
// scheduler's BatchJob.
type InstrumentedSweep struct {
	sweeper Sweeper
	metrics *Metrics
}

func NewInstrumentedSweep(sweeper Sweeper, m *Metrics) *InstrumentedSweep {
	return &InstrumentedSweep{sweeper: sweeper, metrics: m}
}

func (s *InstrumentedSweep) Execute(ctx context.Context) (int, error) {
	start := time.Now()
	res, err := s.sweeper.Sweep(ctx)
	s.metrics.ObserveSweep(res, err, time.Since(start))
	if err != nil {
		return 0, err
	}
	return res.Processed(), nil
}

func (m *Metrics) ObserveSweep(res *reminderusecases.SweepResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.sweepRuns.WithLabelValues("error").Inc()
	case res != nil && res.Locked:
		m.sweepRuns.WithLabelValues("locked").Inc()
		return
	default:
		m.sweepRuns.WithLabelValues("ok").Inc()
	}
	m.sweepDuration.Observe(elapsed.Seconds())

	if res == nil {
		return
	}
	m.sweepItems.WithLabelValues("sent").Add(float64(res.Sent))
	m.sweepItems.WithLabelValues("failed").Add(float64(res.Failed))
	m.sweepItems.WithLabelValues("skipped").Add(float64(res.Skipped))
	m.sweepItems.WithLabelValues("expired").Add(float64(res.Expired))
}
