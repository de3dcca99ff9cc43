package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fortuna/drivescore/internal/config"
	"github.com/fortuna/drivescore/internal/pipeline"
	"github.com/fortuna/drivescore/internal/service"
	"github.com/fortuna/drivescore/internal/store"
)

// RunHandler proxies API calls to the run service.
type RunHandler struct {
	service  *service.RunService
	defaults pipeline.JobSpec
}

// NewRunHandler wires the REST layer to the run service. Seasons missing
// from a request fall back to defaults.
func NewRunHandler(svc *service.RunService, defaults pipeline.JobSpec) *RunHandler {
	return &RunHandler{service: svc, defaults: defaults}
}

type apiRunRequest struct {
	StartSeason int  `json:"start_season"`
	EndSeason   int  `json:"end_season"`
	DryRun      bool `json:"dry_run"`
}

// HandleRunRequest handles POST /api/v1/runs
func (h *RunHandler) HandleRunRequest(w http.ResponseWriter, r *http.Request) {
	var req apiRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	spec := pipeline.JobSpec{
		StartSeason: h.defaults.StartSeason,
		EndSeason:   h.defaults.EndSeason,
		DryRun:      req.DryRun,
	}
	if req.StartSeason != 0 {
		spec.StartSeason = req.StartSeason
	}
	if req.EndSeason != 0 {
		spec.EndSeason = req.EndSeason
	}

	if err := config.ValidateSeasons(spec.StartSeason, spec.EndSeason); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season range", err)
		return
	}

	if err := h.service.Trigger(spec); err != nil {
		respondError(w, statusFor(err), "Failed to start scoring run", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":       "accepted",
		"start_season": spec.StartSeason,
		"end_season":   spec.EndSeason,
		"dry_run":      spec.DryRun,
	})
}

// HandleLatestRun handles GET /api/v1/runs/latest
func (h *RunHandler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetLatestRun(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch latest run", err)
		return
	}

	payload := runPayload(run)
	payload["active"] = h.service.Running()
	respondJSON(w, http.StatusOK, payload)
}

func runPayload(run *store.ScoringRun) map[string]interface{} {
	payload := map[string]interface{}{
		"run_id":        run.RunID,
		"start_season":  run.StartSeason,
		"end_season":    run.EndSeason,
		"seasons":       run.Seasons,
		"iterations":    run.Iterations,
		"step_size":     run.StepSize,
		"drives_scored": run.DrivesScored,
		"status":        run.Status,
		"started_at":    run.StartedAt,
	}

	if run.CompletedAt.Valid {
		payload["completed_at"] = run.CompletedAt.Time
	}
	if run.LastError.Valid {
		payload["last_error"] = run.LastError.String
	}

	return payload
}
