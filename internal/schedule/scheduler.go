package schedule

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"ledgersync/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler fires registered jobs at the instants described by the
// single global cron schedule. Trigger callbacks only enqueue onto the
// Runner; business logic never executes on the cron goroutine. Firing
// for a job whose previous execution is still queued or running is
// coalesced into nothing.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	log      *slog.Logger
	spec     string
	schedule config.Schedule

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// slogCronLogger adapts slog to the cron.Logger interface.
type slogCronLogger struct {
	log *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

// NewScheduler creates a scheduler driven by the given cron schedule.
func NewScheduler(schedule config.Schedule, runner *Runner, log *slog.Logger) *Scheduler {
	cl := slogCronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cl)),
		),
		runner:   runner,
		log:      log,
		spec:     schedule.CronSpec(),
		schedule: schedule,
		entries:  make(map[string]cron.EntryID),
	}
}

// Start launches the cron goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts trigger evaluation and waits for any in-flight callback.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Add registers a cron trigger for the job id. An existing trigger for
// the same id is replaced, which makes repeated registration (e.g. a
// second reconciliation pass) idempotent.
func (s *Scheduler) Add(jobID string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[jobID]; ok {
		s.cron.Remove(old)
	}

	id, err := s.cron.AddFunc(s.spec, func() {
		if s.runner.Pending(jobID) {
			s.log.Warn("skipping trigger, previous run still pending", "job_id", jobID)
			return
		}
		s.runner.Enqueue(task)
	})
	if err != nil {
		return fmt.Errorf("failed to register trigger for job %s: %w", jobID, err)
	}

	s.entries[jobID] = id
	return nil
}

// Remove deletes the live trigger for a job id. A missing trigger is a
// consistent state (e.g. after a restart before reconciliation) and is
// treated as a no-op.
func (s *Scheduler) Remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[jobID]
	if !ok {
		s.log.Debug("no live trigger to remove", "job_id", jobID)
		return
	}
	s.cron.Remove(id)
	delete(s.entries, jobID)
}

// NextRun returns the next fire time for a job id, or false when the
// job has no live trigger or the scheduler is not started.
func (s *Scheduler) NextRun(jobID string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[jobID]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	entry := s.cron.Entry(id)
	if !entry.Valid() || entry.Next.IsZero() {
		return time.Time{}, false
	}
	return entry.Next, true
}

// Entries returns the number of live triggers.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Describe renders a human-readable description of the schedule cadence.
func (s *Scheduler) Describe() string {
	return describeSchedule(s.schedule)
}

func describeSchedule(sch config.Schedule) string {
	if n, ok := everyInterval(sch.Hour); ok {
		return fmt.Sprintf("every %d hours", n)
	}
	if n, ok := everyInterval(sch.Day); ok {
		return fmt.Sprintf("every %d days", n)
	}
	if n, ok := everyInterval(sch.Minute); ok {
		return fmt.Sprintf("every %d minutes", n)
	}
	if n, ok := everyInterval(sch.Second); ok {
		return fmt.Sprintf("every %d seconds", n)
	}
	return "on a custom schedule"
}

func everyInterval(field string) (int, bool) {
	if !strings.HasPrefix(field, "*/") {
		return 0, false
	}
	n, err := strconv.Atoi(field[2:])
	if err != nil {
		return 0, false
	}
	return n, true
}
