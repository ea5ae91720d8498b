// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// StartJobRequest is the request body for starting a scheduled job.
type StartJobRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	JobType  string `json:"job_type"`
}

// StartJobResponse is the response body after starting a job.
type StartJobResponse struct {
	JobID          string     `json:"job_id"`
	AlreadyRunning bool       `json:"already_running"`
	Schedule       string     `json:"schedule"`
	NextRun        *time.Time `json:"next_run,omitempty"`
}

// StopJobResponse is the response body after stopping a job.
type StopJobResponse struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
	Status  string `json:"status"`
}

// JobResponse represents one scheduled job in API responses.
type JobResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	JobType   string    `json:"job_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListJobsResponse is the response body for listing active jobs.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// StoreTokenRequest carries token material obtained from the provider's
// authorization flow, plus the tenant selected during consent.
type StoreTokenRequest struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
}

// StoreTokenResponse is the response body after storing a token.
type StoreTokenResponse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
