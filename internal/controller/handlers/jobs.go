package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledgersync/internal/schedule"
	"ledgersync/internal/store"
	"ledgersync/pkg/api"
)

// StartJob handles POST /jobs/start.
// It idempotently ensures an active scheduled job for the
// (user, tenant, job type) key.
func (h *Handlers) StartJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.StartJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.TenantID == "" || req.JobType == "" {
		h.httpError(w, "user_id, tenant_id and job_type are required", http.StatusBadRequest)
		return
	}

	res, err := h.orch.StartJobForUser(ctx, req.UserID, req.TenantID, store.JobType(req.JobType))
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidJobType):
			h.httpError(w, "Unknown job type", http.StatusBadRequest)
		case errors.Is(err, schedule.ErrNoBrainID):
			h.httpError(w, "User has no brain id configured", http.StatusBadRequest)
		case errors.Is(err, schedule.ErrUserNotFound):
			h.httpError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, schedule.ErrTenantNotFound):
			h.httpError(w, "Tenant not found", http.StatusNotFound)
		default:
			h.log.Error("failed to start job", "user_id", req.UserID, "tenant_id", req.TenantID, "error", err)
			h.httpError(w, "Failed to start job", http.StatusInternalServerError)
		}
		return
	}

	h.respondJson(w, http.StatusOK, api.StartJobResponse{
		JobID:          res.JobID,
		AlreadyRunning: res.AlreadyRunning,
		Schedule:       res.Schedule,
		NextRun:        res.NextRun,
	})
}

// StopJob handles POST /jobs/{id}/stop.
// Stopping an already-stopped job succeeds.
func (h *Handlers) StopJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID := r.PathValue("id")
	if jobID == "" {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.orch.StopJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, schedule.ErrJobNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to stop job", "job_id", jobID, "error", err)
		h.httpError(w, "Failed to stop job", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.StopJobResponse{
		JobID:   job.ID,
		JobType: string(job.JobType),
		Status:  "stopped",
	})
}

// ListJobs handles GET /jobs.
// It returns every active scheduled job.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListActiveJobs(r.Context())
	if err != nil {
		h.log.Error("failed to list jobs", "error", err)
		h.httpError(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	resp := api.ListJobsResponse{Jobs: make([]api.JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, api.JobResponse{
			ID:        job.ID,
			UserID:    job.UserID,
			TenantID:  job.TenantID,
			JobType:   string(job.JobType),
			IsActive:  job.IsActive,
			CreatedAt: job.CreatedAt,
			UpdatedAt: job.UpdatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}
