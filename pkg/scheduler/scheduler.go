// Package scheduler runs the periodic background jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Checker is a job probing a dependency.
type Checker interface {
	Check(ctx context.Context)
}

// Scheduler manages background jobs
type Scheduler struct {
	cron     *cron.Cron
	checker  Checker
	schedule string
	log      *slog.Logger
}

// NewScheduler creates a new scheduler running checker on schedule, a cron
// expression or a descriptor such as "@every 30s".
func NewScheduler(schedule string, checker Checker) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		checker:  checker,
		schedule: schedule,
		log:      slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger for the scheduler
func (s *Scheduler) SetLogger(log *slog.Logger) {
	s.log = log
}

// Start runs a first check, then schedules the next ones.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.log.Debug("Running scheduled health check")
		s.checker.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("Start: invalid schedule %q: %w", s.schedule, err)
	}

	s.checker.Check(ctx)
	s.log.Info("Starting scheduler", slog.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}
