package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgersync/internal/logger"
	"ledgersync/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Caller errors surfaced by StartJobForUser and StopJob. They indicate
// missing configuration or unknown identifiers and are never retried.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNoBrainID      = errors.New("user has no brain id configured")
	ErrTenantNotFound = errors.New("tenant metadata not found")
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidJobType = errors.New("invalid job type")
)

// Ingestor runs one fetch-and-forward pass for a scheduled job. The
// manager treats bodies as opaque; failures are logged at the queue
// boundary and never propagate past a single run.
type Ingestor interface {
	Ingest(ctx context.Context, job store.ScheduledJob) error
}

// StartResult describes a started (or already running) job.
type StartResult struct {
	JobID          string
	AlreadyRunning bool
	Schedule       string
	NextRun        *time.Time
}

// Manager is the orchestration façade: it keeps the durable job
// registry, the live cron triggers and the execution queue consistent
// with each other. The registry is authoritative; triggers are a
// disposable projection rebuilt by RestoreJobs on startup.
type Manager struct {
	jobs      store.JobStore
	users     store.UserStore
	tenants   store.TenantStore
	scheduler *Scheduler
	runner    *Runner
	ingestors map[store.JobType]Ingestor
	log       *slog.Logger
	timeout   time.Duration

	runCounter  metric.Int64Counter
	failCounter metric.Int64Counter
}

// ManagerDeps bundles the manager's collaborators.
type ManagerDeps struct {
	Jobs      store.JobStore
	Users     store.UserStore
	Tenants   store.TenantStore
	Scheduler *Scheduler
	Runner    *Runner
	Ingestors map[store.JobType]Ingestor
	Log       *slog.Logger

	// JobTimeout bounds a single execution body.
	JobTimeout time.Duration
}

// NewManager creates the orchestrator.
func NewManager(deps ManagerDeps) *Manager {
	if deps.JobTimeout <= 0 {
		deps.JobTimeout = 5 * time.Minute
	}

	meter := otel.Meter("ledgersync")
	runCounter, _ := meter.Int64Counter("ledgersync.jobs.runs",
		metric.WithDescription("Number of job executions started"))
	failCounter, _ := meter.Int64Counter("ledgersync.jobs.failures",
		metric.WithDescription("Number of job executions that failed"))

	return &Manager{
		jobs:        deps.Jobs,
		users:       deps.Users,
		tenants:     deps.Tenants,
		scheduler:   deps.Scheduler,
		runner:      deps.Runner,
		ingestors:   deps.Ingestors,
		log:         deps.Log,
		timeout:     deps.JobTimeout,
		runCounter:  runCounter,
		failCounter: failCounter,
	}
}

// StartJobForUser idempotently ensures one active job for the
// (user, tenant, jobType) key: an existing active job is returned as-is,
// otherwise a registry row is created, a cron trigger installed and one
// immediate execution enqueued so data starts flowing right away.
func (m *Manager) StartJobForUser(ctx context.Context, userID, tenantID string, jobType store.JobType) (*StartResult, error) {
	if !jobType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJobType, jobType)
	}

	user, err := m.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user.BrainID == nil || *user.BrainID == "" {
		return nil, ErrNoBrainID
	}

	if _, err := m.tenants.GetTenantMetadata(ctx, tenantID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	if existing, err := m.jobs.GetActiveJob(ctx, userID, tenantID, jobType); err == nil {
		m.log.Info("job already scheduled",
			"job_id", existing.ID, "user_id", userID, "tenant_id", tenantID, "job_type", jobType)
		return m.result(existing.ID, true), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing job: %w", err)
	}

	job := &store.ScheduledJob{
		ID:       uuid.NewString(),
		UserID:   userID,
		TenantID: tenantID,
		BrainID:  *user.BrainID, // frozen here; never re-synced from the user record
		JobType:  jobType,
		IsActive: true,
	}
	if err := m.jobs.CreateJob(ctx, nil, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	if err := m.schedule(*job); err != nil {
		return nil, err
	}

	m.log.Info("job scheduled",
		"job_id", job.ID, "user_id", userID, "tenant_id", tenantID,
		"job_type", jobType, "cadence", m.scheduler.Describe())
	return m.result(job.ID, false), nil
}

// StopJob marks the registry row inactive and then best-effort removes
// the live trigger. The durable flip happens first: the registry is the
// intent, the trigger a derived artifact that reconciliation can always
// rebuild or drop.
func (m *Manager) StopJob(ctx context.Context, jobID string) (*store.ScheduledJob, error) {
	job, err := m.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	if err := m.jobs.DeactivateJob(ctx, nil, jobID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to deactivate job %s: %w", jobID, err)
	}

	m.scheduler.Remove(jobID)

	m.log.Info("job stopped", "job_id", jobID, "job_type", job.JobType)
	return job, nil
}

// RestoreJobs is the startup reconciliation pass: it ensures one active
// registry row per (tenant, job type) and reinstalls every active job's
// trigger plus one immediate execution. Running it twice with no state
// change creates no additional rows and no additional triggers.
func (m *Manager) RestoreJobs(ctx context.Context) error {
	tenants, err := m.tenants.ListTenantMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenant metadata: %w", err)
	}
	m.log.Info("checking tenants for required jobs", "tenants", len(tenants))

	created := 0
	for _, tenant := range tenants {
		user, err := m.users.GetUserByID(ctx, tenant.UserID)
		if err != nil || user.BrainID == nil || *user.BrainID == "" {
			// One bad tenant must not abort reconciliation for the rest.
			m.log.Warn("skipping tenant, owner missing or has no brain id",
				"tenant_id", tenant.TenantID, "user_id", tenant.UserID)
			continue
		}

		for _, jobType := range store.JobTypes {
			if _, err := m.jobs.GetActiveJob(ctx, tenant.UserID, tenant.TenantID, jobType); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				m.log.Error("failed to check existing job",
					"tenant_id", tenant.TenantID, "job_type", jobType, "error", err)
				continue
			}

			job := &store.ScheduledJob{
				ID:       uuid.NewString(),
				UserID:   tenant.UserID,
				TenantID: tenant.TenantID,
				BrainID:  *user.BrainID,
				JobType:  jobType,
				IsActive: true,
			}
			if err := m.jobs.CreateJob(ctx, nil, job); err != nil {
				m.log.Error("failed to create job during reconciliation",
					"tenant_id", tenant.TenantID, "job_type", jobType, "error", err)
				continue
			}
			created++
		}
	}
	if created > 0 {
		m.log.Info("created missing jobs during reconciliation", "created", created)
	}

	active, err := m.jobs.ListActiveJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active jobs: %w", err)
	}
	m.log.Info("restoring active jobs", "jobs", len(active))

	for _, job := range active {
		if err := m.schedule(job); err != nil {
			m.log.Error("failed to restore job", "job_id", job.ID, "error", err)
		}
	}
	return nil
}

// schedule installs (or replaces) the cron trigger for a job and queues
// one immediate execution.
func (m *Manager) schedule(job store.ScheduledJob) error {
	task := m.task(job)
	if err := m.scheduler.Add(job.ID, task); err != nil {
		return err
	}
	m.runner.Enqueue(task)

	if next, ok := m.scheduler.NextRun(job.ID); ok {
		m.log.Info("next run scheduled", "job_id", job.ID, "next_run", next)
	}
	return nil
}

// task wraps the job's ingestor into a queue task with a hard deadline,
// a tracing span and failure isolation.
func (m *Manager) task(job store.ScheduledJob) Task {
	return Task{
		JobID: job.ID,
		Run: func(ctx context.Context) {
			ingestor, ok := m.ingestors[job.JobType]
			if !ok {
				// Job types are validated at creation; reaching this is a defect.
				m.log.Error("no ingestor registered for job type", "job_id", job.ID, "job_type", job.JobType)
				return
			}

			tracer := otel.Tracer("job-runner")
			ctx, span := tracer.Start(ctx, "run_job",
				trace.WithAttributes(
					attribute.String("job.id", job.ID),
					attribute.String("job.type", string(job.JobType)),
					attribute.String("tenant.id", job.TenantID),
					attribute.String("user.id", job.UserID),
				),
				trace.WithSpanKind(trace.SpanKindConsumer),
			)
			defer span.End()

			ctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			ctx = logger.WithJobID(ctx, job.ID)

			m.runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("job.type", string(job.JobType))))

			log := logger.FromContext(ctx, m.log)
			log.Info("job execution started", "job_type", job.JobType, "tenant_id", job.TenantID)

			if err := ingestor.Ingest(ctx, job); err != nil {
				span.RecordError(err)
				m.failCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("job.type", string(job.JobType))))
				log.Error("job execution failed", "job_type", job.JobType, "tenant_id", job.TenantID, "error", err)
				return
			}
			log.Info("job execution finished", "job_type", job.JobType, "tenant_id", job.TenantID)
		},
	}
}

func (m *Manager) result(jobID string, alreadyRunning bool) *StartResult {
	res := &StartResult{
		JobID:          jobID,
		AlreadyRunning: alreadyRunning,
		Schedule:       m.scheduler.Describe(),
	}
	if next, ok := m.scheduler.NextRun(jobID); ok {
		res.NextRun = &next
	}
	return res
}
