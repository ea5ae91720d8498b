package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledgersync/internal/store"
)

// CreateJob inserts a new scheduled job row.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.ScheduledJob) error {
	query := `
		INSERT INTO scheduled_jobs (id, user_id, tenant_id, brain_id, job_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.TenantID,
		job.BrainID,
		job.JobType,
		job.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJobByID returns a job by its ID.
func (s *Store) GetJobByID(ctx context.Context, id string) (*store.ScheduledJob, error) {
	query := `
		SELECT id, user_id, tenant_id, brain_id, job_type, is_active, created_at, updated_at
		FROM scheduled_jobs
		WHERE id = $1
	`

	var job store.ScheduledJob
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.UserID,
		&job.TenantID,
		&job.BrainID,
		&job.JobType,
		&job.IsActive,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// GetActiveJob returns the active job for a (user, tenant, type) key.
func (s *Store) GetActiveJob(ctx context.Context, userID, tenantID string, jobType store.JobType) (*store.ScheduledJob, error) {
	query := `
		SELECT id, user_id, tenant_id, brain_id, job_type, is_active, created_at, updated_at
		FROM scheduled_jobs
		WHERE user_id = $1 AND tenant_id = $2 AND job_type = $3 AND is_active
	`

	var job store.ScheduledJob
	err := s.db.QueryRowContext(ctx, query, userID, tenantID, jobType).Scan(
		&job.ID,
		&job.UserID,
		&job.TenantID,
		&job.BrainID,
		&job.JobType,
		&job.IsActive,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// ListActiveJobs returns every active job, oldest first.
func (s *Store) ListActiveJobs(ctx context.Context) ([]store.ScheduledJob, error) {
	query := `
		SELECT id, user_id, tenant_id, brain_id, job_type, is_active, created_at, updated_at
		FROM scheduled_jobs
		WHERE is_active
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []store.ScheduledJob
	for rows.Next() {
		var job store.ScheduledJob
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.TenantID,
			&job.BrainID,
			&job.JobType,
			&job.IsActive,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// DeactivateJob flips is_active to false. The row stays for auditing.
func (s *Store) DeactivateJob(ctx context.Context, tx store.DBTransaction, id string) error {
	query := `
		UPDATE scheduled_jobs
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	executor := s.getExecutor(tx)
	res, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate job %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
