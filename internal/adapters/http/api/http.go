// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/teambalance/internal/adapters/repository"
	service "github.com/okian/teambalance/internal/app"
	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/engine"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	GenerateDependencies
	RunsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	generateHandler *GenerateHandler
	runsHandler     *RunsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		generateHandler: NewGenerateHandler(deps),
		runsHandler:     NewRunsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/teams/generate", MetricsMiddleware(s.generateHandler.HandleGenerate, "teams_generate"))
	mux.HandleFunc("/runs", MetricsMiddleware(s.runsHandler.HandleListRuns, "runs"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "run"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field names the offending config field for configuration errors.
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var cerr *capacity.ConfigurationError
	if errors.As(err, &cerr) {
		resp.Field = cerr.Field
	}
	writeJSON(w, status, resp)
}

// writeUpstreamError translates service and store errors to HTTP responses.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, capacity.ErrInvalidConfig):
		writeError(w, http.StatusUnprocessableEntity, "invalid_config", WrapKind(op, ErrConfiguration, err))
	case errors.Is(err, service.ErrRosterTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "roster_too_large", WrapKind(op, ErrTooLarge, err))
	case errors.Is(err, engine.ErrUnknownMode), errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
