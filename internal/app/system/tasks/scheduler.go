// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each registered job on its own ticker until Stop.
type Scheduler struct {
	jobs    []Job
	log     *zap.Logger
	timeout time.Duration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. Each run of a job is bounded by
// timeout.
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{log: logger, timeout: timeout}
}

// Add registers j. Jobs added after Start are ignored.
func (s *Scheduler) Add(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start launches one goroutine per job.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	s.log.Info("background jobs started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.log.Info("background jobs stopped")
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j Job) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := j.Run(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
