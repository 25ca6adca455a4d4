package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// Refresher runs a single refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs refresh cycles on a fixed interval, never two at once.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
	cancel    context.CancelFunc
}

// New creates a Scheduler for refresher.
func New(refresher Refresher, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start runs the first cycle synchronously, then schedules the rest. A failed
// first cycle is logged and does not prevent scheduling.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: refresh interval must be positive")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.run(ctx)

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(s.run, ctx)
	if err != nil {
		s.cancel()
		return err
	}

	s.scheduler.StartAsync()
	s.metrics.RefresherRunning.Set(1)
	s.logger.Info("refresh scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels an in-flight cycle and stops future ones.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	s.metrics.RefresherRunning.Set(0)
	s.logger.Info("refresh scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled refresh failed", "error", err)
	}
}
