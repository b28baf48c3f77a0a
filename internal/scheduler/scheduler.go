// Package scheduler runs periodic jobs of the service on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper writes due reminders and reports how many it wrote.
type Sweeper interface {
	SweepReminders(ctx context.Context, window time.Duration) (int, error)
}

// Scheduler triggers the reminder sweep on a standard five field cron
// expression evaluated in a fixed location.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	window  time.Duration
	timeout time.Duration
}

// New parses the cron expression and prepares a scheduler.  It does not start it.
func New(expr string, loc *time.Location, sweeper Sweeper, window time.Duration) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		sweeper: sweeper,
		window:  window,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(expr, s.RunOnce); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q: %w", expr, err)
	}
	return s, nil
}

// RunOnce performs a single sweep.  Failures are logged; the next tick
// retries.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sweeper.SweepReminders(ctx, s.window)
	if err != nil {
		log.Printf("scheduler: reminder sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("scheduler: wrote %d reminders", n)
	}
}

// Next reports when the sweep runs next.  It is zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler: started, window=%s", s.window)
}

// Stop halts the schedule and waits for a running sweep, or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Printf("scheduler: stop: %v", ctx.Err())
	}
}
