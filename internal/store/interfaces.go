package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// JobStore handles the persistence of scheduled job records.
type JobStore interface {
	// CreateJob inserts a new scheduled job row.
	CreateJob(ctx context.Context, tx DBTransaction, job *ScheduledJob) error

	// GetJobByID returns a job by its ID.
	GetJobByID(ctx context.Context, id string) (*ScheduledJob, error)

	// GetActiveJob returns the active job for a (user, tenant, type) key,
	// or ErrNotFound when none exists.
	GetActiveJob(ctx context.Context, userID, tenantID string, jobType JobType) (*ScheduledJob, error)

	// ListActiveJobs returns every job with is_active = true.
	ListActiveJobs(ctx context.Context) ([]ScheduledJob, error)

	// DeactivateJob flips is_active to false. The row is kept as an audit trail.
	DeactivateJob(ctx context.Context, tx DBTransaction, id string) error
}

// CredentialStore handles the persistence of OAuth2 token records.
type CredentialStore interface {
	// GetCredential returns the newest-expiring credential for a user,
	// or ErrNotFound when none exists.
	GetCredential(ctx context.Context, userID string) (*Credential, error)

	// UpsertCredential replaces the user's credential in place, inserting
	// when no row exists yet.
	UpsertCredential(ctx context.Context, cred *Credential) error

	// DeleteCredential removes the user's credential. Deleting an absent
	// credential is a no-op.
	DeleteCredential(ctx context.Context, userID string) error

	// SetCredentialTenant updates the tenant currently selected for the
	// user's session, independent of token refresh.
	SetCredentialTenant(ctx context.Context, userID, tenantID string) error
}

// TenantStore handles retrieving tenant metadata.
type TenantStore interface {
	// GetTenantMetadata returns the metadata row for a (tenant, user) pair,
	// or ErrNotFound.
	GetTenantMetadata(ctx context.Context, tenantID, userID string) (*TenantMetadata, error)

	// ListTenantMetadata returns every connected tenant across all users.
	ListTenantMetadata(ctx context.Context) ([]TenantMetadata, error)
}

// UserStore handles retrieving user records.
type UserStore interface {
	// GetUserByID returns a user by its ID, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// StatementStore reads ingested bank statement rows.
type StatementStore interface {
	// ListStatements returns every statement row for a tenant.
	ListStatements(ctx context.Context, tenantID string) ([]Statement, error)
}
