// Package schedule contains the job orchestration core: the serialized
// execution queue, the cron trigger engine and the job manager.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// taskPause separates consecutive executions so one run's resources are
// fully torn down before the next begins.
const taskPause = 500 * time.Millisecond

// Task is one queued unit of work: a job id and its execution body.
type Task struct {
	JobID string
	Run   func(ctx context.Context)
}

// Runner serializes job execution through a single worker: at most one
// task body runs at a time regardless of how many triggers fire
// concurrently. The queue is purely in-memory; contents are lost on
// crash and regenerated from durable state by the next cron firing or
// by startup reconciliation.
type Runner struct {
	log   *slog.Logger
	base  context.Context
	pause time.Duration

	mu      sync.Mutex
	queue   []Task
	running bool
	active  string // job id currently executing, "" when idle
	wg      sync.WaitGroup
}

// NewRunner creates a runner whose tasks execute under the given base
// context. Cancelling it stops the drain after the current task.
func NewRunner(base context.Context, log *slog.Logger) *Runner {
	return &Runner{
		log:   log,
		base:  base,
		pause: taskPause,
	}
}

// Enqueue appends a task and starts the worker if none is running.
// Concurrent calls never spawn more than one worker.
func (r *Runner) Enqueue(task Task) {
	r.mu.Lock()
	r.queue = append(r.queue, task)
	start := !r.running
	if start {
		r.running = true
		r.wg.Add(1)
	}
	r.mu.Unlock()

	if start {
		go r.drain()
	}
}

// Pending reports whether the job id is currently queued or executing.
// The scheduler uses this to coalesce firings of the same job.
func (r *Runner) Pending(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == jobID {
		return true
	}
	for _, t := range r.queue {
		if t.JobID == jobID {
			return true
		}
	}
	return false
}

// Len returns the number of queued tasks, excluding the one executing.
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Shutdown blocks until the worker has stopped or the context expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain pops and executes tasks one at a time until the queue is empty
// or the base context is cancelled. One task's failure never stalls the
// rest of the queue.
func (r *Runner) drain() {
	defer r.wg.Done()

	for {
		r.mu.Lock()
		if len(r.queue) == 0 || r.base.Err() != nil {
			r.running = false
			r.active = ""
			r.mu.Unlock()
			return
		}
		task := r.queue[0]
		r.queue = r.queue[1:]
		r.active = task.JobID
		r.mu.Unlock()

		r.execute(task)

		r.mu.Lock()
		r.active = ""
		empty := len(r.queue) == 0
		r.mu.Unlock()

		if !empty {
			select {
			case <-time.After(r.pause):
			case <-r.base.Done():
			}
		}
	}
}

func (r *Runner) execute(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("job execution panicked", "job_id", task.JobID, "panic", rec)
		}
	}()
	task.Run(r.base)
}
