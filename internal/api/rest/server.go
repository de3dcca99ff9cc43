package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port   int
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port int, handler *Handler, runHandler *RunHandler) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Ratings
	api.HandleFunc("/ratings", handler.GetSeasonRatings).Methods("GET")
	api.HandleFunc("/teams/{team}/ratings", handler.GetTeamRatings).Methods("GET")

	// Games
	api.HandleFunc("/games/{gameID}/drives", handler.GetGameDrives).Methods("GET")
	api.HandleFunc("/games/{gameID}/scores", handler.GetGameScores).Methods("GET")

	// Scoring runs
	api.HandleFunc("/runs", runHandler.HandleRunRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/runs/latest", runHandler.HandleLatestRun).Methods("GET")

	return &Server{
		port:   port,
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
