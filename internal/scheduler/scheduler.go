// Package scheduler fires jobs into the worker pool on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/worker"
)

// Log messages
const (
	LogMsgScheduled   = "Job scheduled"
	LogMsgJobSkipped  = "Scheduled job not enqueued"
	LogMsgStopped     = "Scheduler stopped"
	LogMsgNoNextRun   = "Schedule has no further runs, job retired"
	ErrMsgBadSchedule = "invalid schedule"
	ErrMsgNeverFires  = "schedule never fires"
)

// Enqueuer accepts jobs without blocking
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Scheduler manages scheduled jobs. Each schedule has its own goroutine and
// only enqueues; a slow job delays nothing but its own worker.
type Scheduler struct {
	workerPool Enqueuer
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	now        func() time.Time
}

// New creates a new scheduler
func New(pool Enqueuer) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
		now:        time.Now,
	}
}

// ParseSchedule accepts standard five-field cron specs and descriptors
// such as "@hourly" or "@every 30s".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", ErrMsgBadSchedule, spec, err)
	}
	return s, nil
}

// Schedule registers job on a cron spec
func (s *Scheduler) Schedule(ctx context.Context, spec string, job worker.Job) error {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return err
	}
	// cron returns the zero time when no match exists within five years, e.g. "0 0 30 2 *".
	if sched.Next(s.now()).IsZero() {
		return fmt.Errorf("%s %q: %s", ErrMsgBadSchedule, spec, ErrMsgNeverFires)
	}
	s.start(ctx, sched, job)
	logger.FromContext(ctx).Info(LogMsgScheduled, "job", job.Name(), "schedule", spec)
	return nil
}

// ScheduleEvery registers job at a fixed interval. Unlike "@every", the
// interval is not rounded up to a whole second.
func (s *Scheduler) ScheduleEvery(ctx context.Context, interval time.Duration, job worker.Job) {
	s.start(ctx, every(interval), job)
	logger.FromContext(ctx).Info(LogMsgScheduled, "job", job.Name(), "interval", interval)
}

func (s *Scheduler) start(ctx context.Context, sched cron.Schedule, job worker.Job) {
	log := logger.FromContext(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			now := s.now()
			next := sched.Next(now)
			if next.IsZero() {
				log.Error(LogMsgNoNextRun, "job", job.Name())
				return
			}
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
				if !s.workerPool.Enqueue(job) {
					log.Warn(LogMsgJobSkipped, "job", job.Name())
				}
			case <-s.quit:
				timer.Stop()
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs. Jobs already enqueued are left to the pool.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
	logger.FromContext(ctx).Info(LogMsgStopped)
}

type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}
