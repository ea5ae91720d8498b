// Package handlers contains HTTP handlers for the server API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"ledgersync/internal/schedule"
	"ledgersync/internal/store"
	"ledgersync/internal/token"
	"ledgersync/pkg/api"
)

// Orchestrator is the job lifecycle surface the handlers drive.
type Orchestrator interface {
	StartJobForUser(ctx context.Context, userID, tenantID string, jobType store.JobType) (*schedule.StartResult, error)
	StopJob(ctx context.Context, jobID string) (*store.ScheduledJob, error)
}

// TokenManager is the credential lifecycle surface the handlers drive.
type TokenManager interface {
	StoreToken(ctx context.Context, payload token.Payload, userID string) (token.Token, error)
	Invalidate(ctx context.Context, userID string) error
}

// Pinger reports database connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	orch   Orchestrator
	jobs   store.JobStore
	tokens TokenManager
	creds  store.CredentialStore
	db     Pinger
	log    *slog.Logger
}

// New creates a new Handlers instance with the given dependencies.
func New(orch Orchestrator, jobs store.JobStore, tokens TokenManager, creds store.CredentialStore, db Pinger, log *slog.Logger) *Handlers {
	return &Handlers{orch: orch, jobs: jobs, tokens: tokens, creds: creds, db: db, log: log}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
