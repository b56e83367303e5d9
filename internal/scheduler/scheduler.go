package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule refreshes the active view every five minutes.
const DefaultSchedule = "*/5 * * * *"

// Refresher reloads whatever view is on screen.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	refresher Refresher
	logger    logrus.FieldLogger
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration
}

// NewScheduler creates a scheduler for schedule, a standard five-field
// cron expression or descriptor. An empty schedule disables refreshing.
func NewScheduler(refresher Refresher, schedule string, timeout time.Duration, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		logger:    logger,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule:  schedule,
		timeout:   timeout,
	}
}

// Start the scheduler
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("Periodic refresh disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.refresh); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Periodic refresh scheduled")
	return nil
}

// refresh reloads the active view; overlapping runs are skipped.
func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).Warn("Scheduled refresh failed")
	}
}

// Stop the scheduler and wait for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
