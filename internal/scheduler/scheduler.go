package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/chineseneo/fuel-bot/internal/app"
	"github.com/chineseneo/fuel-bot/internal/common"
)

// Scheduler runs the daily price cycle at a fixed local time in daemon mode.
type Scheduler struct {
	scheduler *gocron.Scheduler
	app       *app.App
	dailyAt   string
	timeout   time.Duration
	logger    *common.Logger
}

// New creates a Scheduler. dailyAt is a local "HH:MM" time in loc.
func New(a *app.App, dailyAt string, loc *time.Location, logger *common.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		app:       a,
		dailyAt:   dailyAt,
		timeout:   5 * time.Minute,
		logger:    logger,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.dailyAt).Do(func() {
		s.logger.Info().Msg("scheduler: running daily price cycle")

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.app.RunDaily(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduler: daily price cycle failed")
			return
		}
		s.logger.Info().Msg("scheduler: completed daily price cycle")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
