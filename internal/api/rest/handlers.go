package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/service"
	"github.com/fortuna/drivescore/internal/store/repository"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	ratingsService *service.RatingsService
	gameService    *service.GameService
	checks         map[string]HealthChecker
}

// NewHandler creates a new handler
func NewHandler(ratings *service.RatingsService, games *service.GameService) *Handler {
	return &Handler{
		ratingsService: ratings,
		gameService:    games,
		checks:         make(map[string]HealthChecker),
	}
}

// AddHealthCheck includes a dependency in the health report.
func (h *Handler) AddHealthCheck(name string, check HealthChecker) {
	h.checks[name] = check
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.HealthCheck(r.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":       health,
		"service":      "drivescore",
		"version":      "1.0.0",
		"dependencies": deps,
	})
}

// GetSeasonRatings returns a season's ratings ranked for one side
func (h *Handler) GetSeasonRatings(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or missing season (use YYYY)", err)
		return
	}

	side, err := parseSide(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid side", err)
		return
	}

	ratings, err := h.ratingsService.GetSeasonRatings(r.Context(), season, side)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch ratings", err)
		return
	}

	respondJSON(w, http.StatusOK, ratings)
}

// GetTeamRatings returns a team's ratings for every stored season
func (h *Handler) GetTeamRatings(w http.ResponseWriter, r *http.Request) {
	team := mux.Vars(r)["team"]

	ratings, err := h.ratingsService.GetTeamRatings(r.Context(), team)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch team ratings", err)
		return
	}

	respondJSON(w, http.StatusOK, ratings)
}

// GetGameDrives returns a game's scored drives
func (h *Handler) GetGameDrives(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]

	drives, err := h.gameService.GetGameDrives(r.Context(), gameID)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch drives", err)
		return
	}

	respondJSON(w, http.StatusOK, drives)
}

// GetGameScores returns per-team drive score means for a game
func (h *Handler) GetGameScores(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]

	side, err := parseSide(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid side", err)
		return
	}

	scores, err := h.gameService.GetGameScores(r.Context(), gameID, side)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch game scores", err)
		return
	}

	respondJSON(w, http.StatusOK, scores)
}

func parseSide(r *http.Request) (scoring.Side, error) {
	side := r.URL.Query().Get("side")
	if side == "" {
		return scoring.SideOffense, nil
	}
	return scoring.ParseSide(side)
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
