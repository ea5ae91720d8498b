package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"ledgersync/internal/schedule"
	"ledgersync/internal/store"
	"ledgersync/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeOrchestrator struct {
	startResult *schedule.StartResult
	startErr    error
	stopped     *store.ScheduledJob
	stopErr     error

	startCalls int
	stopCalls  int
	lastJobID  string
}

func (f *fakeOrchestrator) StartJobForUser(ctx context.Context, userID, tenantID string, jobType store.JobType) (*schedule.StartResult, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startResult, nil
}

func (f *fakeOrchestrator) StopJob(ctx context.Context, jobID string) (*store.ScheduledJob, error) {
	f.stopCalls++
	f.lastJobID = jobID
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return f.stopped, nil
}

type fakeTokenManager struct {
	stored      []token.Payload
	storeErr    error
	invalidated []string
	invErr      error
}

func (f *fakeTokenManager) StoreToken(ctx context.Context, payload token.Payload, userID string) (token.Token, error) {
	if f.storeErr != nil {
		return token.Token{}, f.storeErr
	}
	f.stored = append(f.stored, payload)
	return token.Normalize(payload, time.Now(), "accounting.transactions"), nil
}

func (f *fakeTokenManager) Invalidate(ctx context.Context, userID string) error {
	if f.invErr != nil {
		return f.invErr
	}
	f.invalidated = append(f.invalidated, userID)
	return nil
}

type fakeJobLister struct {
	jobs    []store.ScheduledJob
	listErr error
}

func (f *fakeJobLister) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.ScheduledJob) error {
	return errors.New("not implemented")
}

func (f *fakeJobLister) GetJobByID(ctx context.Context, id string) (*store.ScheduledJob, error) {
	return nil, store.ErrNotFound
}

func (f *fakeJobLister) GetActiveJob(ctx context.Context, userID, tenantID string, jobType store.JobType) (*store.ScheduledJob, error) {
	return nil, store.ErrNotFound
}

func (f *fakeJobLister) ListActiveJobs(ctx context.Context) ([]store.ScheduledJob, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.jobs, nil
}

func (f *fakeJobLister) DeactivateJob(ctx context.Context, tx store.DBTransaction, id string) error {
	return errors.New("not implemented")
}

type fakeCredStore struct {
	tenants  map[string]string
	setErr   error
	setCalls int
}

func (f *fakeCredStore) GetCredential(ctx context.Context, userID string) (*store.Credential, error) {
	return nil, store.ErrNotFound
}

func (f *fakeCredStore) UpsertCredential(ctx context.Context, cred *store.Credential) error {
	return nil
}

func (f *fakeCredStore) DeleteCredential(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeCredStore) SetCredentialTenant(ctx context.Context, userID, tenantID string) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	if f.tenants == nil {
		f.tenants = map[string]string{}
	}
	f.tenants[userID] = tenantID
	return nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func newTestHandlers(orch *fakeOrchestrator, jobs *fakeJobLister, tokens *fakeTokenManager, creds *fakeCredStore, db *fakePinger) *Handlers {
	if orch == nil {
		orch = &fakeOrchestrator{}
	}
	if jobs == nil {
		jobs = &fakeJobLister{}
	}
	if tokens == nil {
		tokens = &fakeTokenManager{}
	}
	if creds == nil {
		creds = &fakeCredStore{}
	}
	if db == nil {
		db = &fakePinger{}
	}
	return New(orch, jobs, tokens, creds, db, testLogger())
}
