// Package scheduler runs the periodic reminder sweep and the delayed
// deletion of closed ticket channels on a single gocron v2 scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const (
	defaultSweepInterval   = time.Hour
	defaultJobTimeout      = 10 * time.Minute
	channelDeletionTimeout = time.Minute
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// ChannelDeleter removes a closed ticket's channel and row.
type ChannelDeleter func(ctx context.Context, ticketID uint, channelID string) error

// SchedulerManager owns the process's gocron scheduler.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	deleterMu sync.RWMutex
	deleter   ChannelDeleter

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSweepJob runs job every interval, starting immediately. A run that
// is still busy when the next one is due causes that tick to be skipped.
func (m *SchedulerManager) RegisterSweepJob(job BatchJob, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			m.runSweep(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reminder", "expire"),
		gocron.WithName("reminder-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered reminder sweep job", "interval", interval.String(), "timeout", timeout.String())
	return nil
}

func (m *SchedulerManager) runSweep(ctx context.Context, job BatchJob) {
	m.logger.Debugw("reminder sweep started")

	startTime := biztime.NowUTC()
	count, err := job.Execute(ctx)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		m.logger.Errorw("reminder sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("reminder sweep processed items",
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("reminder sweep found nothing due",
			"duration", time.Since(startTime),
		)
	}
}

// SetChannelDeleter binds the function run by deletion jobs. The ticket
// workflow depends on the scheduler and the scheduler calls back into the
// workflow, so the binding happens after both are built.
func (m *SchedulerManager) SetChannelDeleter(fn ChannelDeleter) {
	m.deleterMu.Lock()
	defer m.deleterMu.Unlock()
	m.deleter = fn
}

// ScheduleDeletion registers a one-time job that deletes the ticket's
// channel once delay has passed. Failures are logged and not retried.
func (m *SchedulerManager) ScheduleDeletion(_ context.Context, ticketID uint, channelID string, delay time.Duration) error {
	at := biztime.NowUTC().Add(delay)
	start := gocron.OneTimeJobStartDateTime(at)
	if delay <= 0 {
		start = gocron.OneTimeJobStartImmediately()
	}
	tag := "ticket-" + strconv.FormatUint(uint64(ticketID), 10)

	_, err := m.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), channelDeletionTimeout)
			defer cancel()
			m.deleteChannel(ctx, ticketID, channelID)
		}),
		gocron.WithTags("channel-delete", tag),
		gocron.WithName("channel-delete-"+channelID),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule channel deletion: %w", err)
	}

	m.logger.Infow("scheduled ticket channel deletion",
		"ticket_id", ticketID,
		"channel_id", channelID,
		"delete_at", at,
	)
	return nil
}

func (m *SchedulerManager) deleteChannel(ctx context.Context, ticketID uint, channelID string) {
	m.deleterMu.RLock()
	fn := m.deleter
	m.deleterMu.RUnlock()

	if fn == nil {
		m.logger.Errorw("no channel deleter bound, skipping deletion", "ticket_id", ticketID, "channel_id", channelID)
		return
	}
	if err := fn(ctx, ticketID, channelID); err != nil {
		m.logger.Errorw("ticket channel deletion failed",
			"ticket_id", ticketID,
			"channel_id", channelID,
			"error", err,
		)
		return
	}
	m.logger.Debugw("ticket channel deleted", "ticket_id", ticketID, "channel_id", channelID)
}

// Start begins executing registered jobs. It is a no-op when already running.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
