// Package store contains the database layer for ledgersync.
package store

import "time"

// JobType is the category of recurring work a scheduled job performs.
type JobType string

const (
	JobTypeInvoice   JobType = "invoice"
	JobTypeStatement JobType = "statement"
)

// JobTypes lists every known job type. Reconciliation ensures one
// active job of each type per connected tenant.
var JobTypes = []JobType{JobTypeInvoice, JobTypeStatement}

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	return t == JobTypeInvoice || t == JobTypeStatement
}

// ScheduledJob is the durable record of a recurring ingestion job.
// At most one row per (user_id, tenant_id, job_type) is active at a time.
// Rows are never deleted; stopping a job flips IsActive.
type ScheduledJob struct {
	ID        string
	UserID    string
	TenantID  string
	BrainID   string // frozen copy of the user's brain id at creation time
	JobType   JobType
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential is the durable OAuth2 token record for a user.
// TokenData holds the full serialized token material; ExpiresAt mirrors
// the expiry inside TokenData for SQL-level filtering.
type Credential struct {
	UserID    string
	TokenData []byte
	TenantID  *string // tenant currently selected for the user's session
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TenantMetadata describes an accounting-provider organisation a user
// has connected.
type TenantMetadata struct {
	ID         int64
	UserID     string
	TenantID   string
	TenantName string
	ShortCode  *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// User is the owning account for tenants, credentials and jobs.
type User struct {
	ID        string
	Email     string
	BrainID   *string // downstream processing service id; may be unset
	IsActive  bool
	CreatedAt time.Time
}

// Statement is one bank statement line ingested for a tenant.
type Statement struct {
	ClientName      string
	AccountName     string
	TransactionDate *time.Time
	Payee           string
	Particulars     string
	Received        float64
	FileName        string
}
