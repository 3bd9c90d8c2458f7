// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

// Package cron runs named jobs on cron expressions.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/csyork/csbot/pkg/logger"
)

// Job fires under Name each time Expr matches. Expr accepts five-field cron
// syntax and tags such as @hourly.
type Job struct {
	Name string
	Expr string
}

// FireFunc is called from the job's goroutine with the scheduled tick time.
type FireFunc func(name string, at time.Time)

// Validate reports whether expr is a usable cron expression.
func Validate(expr string) error {
	if !gronx.New().IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	return nil
}

// Next returns the first tick of expr strictly after ref.
func Next(expr string, ref time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, ref, false)
}

type Scheduler struct {
	jobs []Job
	fire FireFunc
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewScheduler(jobs []Job, fire FireFunc) (*Scheduler, error) {
	if fire == nil {
		return nil, fmt.Errorf("cron scheduler needs a fire func")
	}
	for _, j := range jobs {
		if err := Validate(j.Expr); err != nil {
			return nil, fmt.Errorf("job %q: %w", j.Name, err)
		}
	}
	return &Scheduler{
		jobs: jobs,
		fire: fire,
		now:  time.Now,
		wait: sleep,
	}, nil
}

// Start launches one goroutine per job. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	logger.DebugCF("cron", "Scheduler started", map[string]any{"jobs": len(s.jobs)})
}

// Stop cancels every job and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	logger.DebugC("cron", "Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()
	for {
		now := s.now()
		next, err := Next(j.Expr, now)
		if err != nil {
			logger.ErrorCF("cron", "Cannot compute next tick",
				map[string]any{
					"job":   j.Name,
					"expr":  j.Expr,
					"error": err.Error(),
				})
			return
		}
		if !s.wait(ctx, next.Sub(now)) {
			return
		}
		s.fire(j.Name, next)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
