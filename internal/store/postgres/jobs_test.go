package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgersync/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &Store{db: db}, mock
}

func jobColumns() []string {
	return []string{"id", "user_id", "tenant_id", "brain_id", "job_type", "is_active", "created_at", "updated_at"}
}

func TestCreateJob_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	ctx := context.Background()
	job := &store.ScheduledJob{
		ID:       uuid.NewString(),
		UserID:   uuid.NewString(),
		TenantID: "tenant-1",
		BrainID:  "brain_abc",
		JobType:  store.JobTypeInvoice,
		IsActive: true,
	}

	mock.ExpectExec(`INSERT INTO scheduled_jobs`).
		WithArgs(job.ID, job.UserID, job.TenantID, job.BrainID, job.JobType, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CreateJob(ctx, nil, job); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetJobByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.NewString()
	mock.ExpectQuery(`SELECT .+ FROM scheduled_jobs`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	_, err := s.GetJobByID(context.Background(), id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestGetActiveJob_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	jobID := uuid.NewString()
	userID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM scheduled_jobs`).
		WithArgs(userID, "tenant-1", store.JobTypeStatement).
		WillReturnRows(sqlmock.NewRows(jobColumns()).
			AddRow(jobID, userID, "tenant-1", "brain_abc", "statement", true, now, now))

	job, err := s.GetActiveJob(context.Background(), userID, "tenant-1", store.JobTypeStatement)
	if err != nil {
		t.Fatalf("GetActiveJob failed: %v", err)
	}
	if job.ID != jobID {
		t.Errorf("got job id %s, want %s", job.ID, jobID)
	}
	if job.JobType != store.JobTypeStatement {
		t.Errorf("got job type %s, want statement", job.JobType)
	}
}

func TestGetActiveJob_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT .+ FROM scheduled_jobs`).
		WithArgs("user-1", "tenant-1", store.JobTypeInvoice).
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	_, err := s.GetActiveJob(context.Background(), "user-1", "tenant-1", store.JobTypeInvoice)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestListActiveJobs(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM scheduled_jobs`).
		WillReturnRows(sqlmock.NewRows(jobColumns()).
			AddRow(uuid.NewString(), uuid.NewString(), "tenant-1", "brain_a", "invoice", true, now, now).
			AddRow(uuid.NewString(), uuid.NewString(), "tenant-2", "brain_b", "statement", true, now, now))

	jobs, err := s.ListActiveJobs(context.Background())
	if err != nil {
		t.Fatalf("ListActiveJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestDeactivateJob_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.NewString()
	mock.ExpectExec(`UPDATE scheduled_jobs`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeactivateJob(context.Background(), nil, id); err != nil {
		t.Fatalf("DeactivateJob failed: %v", err)
	}
}

func TestDeactivateJob_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectExec(`UPDATE scheduled_jobs`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeactivateJob(context.Background(), nil, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}
