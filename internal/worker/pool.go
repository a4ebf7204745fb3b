// Package worker runs background jobs on a fixed number of goroutines.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/liveops/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Name() string
	Process(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                      { return j.JobName }
func (j JobFunc) Process(ctx context.Context) error { return j.Fn(ctx) }

// Pool represents a worker pool. Each job runs under its own timeout and a
// context detached from the caller; a failing or panicking job never stops
// its worker.
type Pool struct {
	workers  int
	timeout  time.Duration
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
	baseCtx  context.Context
}

// NewPool creates a new worker pool
func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Pool{
		workers:  workers,
		timeout:  timeout,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
		baseCtx:  context.Background(),
	}
}

// Start starts the workers. ctx supplies values (logger) only; its
// cancellation does not reach running jobs.
func (p *Pool) Start(ctx context.Context) {
	p.baseCtx = context.WithoutCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobQueue:
			p.run(job)
		}
	}
}

func (p *Pool) run(job Job) {
	ctx, cancel := context.WithTimeout(p.baseCtx, p.timeout)
	defer cancel()
	log := logger.FromContext(ctx).With("job", job.Name())
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(LogMsgWorkerJobPanic, "panic", r)
				err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
			}
		}()
		return job.Process(ctx)
	}()
	if err != nil {
		log.Error(LogMsgWorkerJobFailed, "error", err, "duration", time.Since(start))
		return
	}
	log.Debug(LogMsgWorkerJobDone, "duration", time.Since(start))
}

// Enqueue adds a job without blocking. It returns false when the queue is
// full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		logger.FromContext(p.baseCtx).Warn(LogMsgQueueFull, "job", job.Name())
		return false
	}
}

// Stop stops the workers and waits for in-flight jobs up to ctx's deadline.
// Queued jobs that have not started are dropped.
func (p *Pool) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.quit) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.FromContext(ctx).Info(LogMsgPoolStopped)
		return nil
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgPoolStopTimedOut)
		return ctx.Err()
	}
}
