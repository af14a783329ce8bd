package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/teambalance/internal/adapters/repository"
)

const defaultListLimit = 20

// RunsDependencies defines the interface for reading stored runs.
type RunsDependencies interface {
	RawRun(ctx context.Context, id string) ([]byte, error)
	ListRuns(ctx context.Context, limit int) ([]repository.Summary, error)
}

// RunsHandler handles stored run requests.
type RunsHandler struct {
	deps     RunsDependencies
	maxLimit int
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunsDependencies, maxLimit int) *RunsHandler {
	if maxLimit < 1 {
		maxLimit = defaultListLimit
	}
	return &RunsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRun handles GET /runs/{id}. The stored snapshot is written as is.
func (h *RunsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_run"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	raw, err := h.deps.RawRun(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// HandleListRuns handles GET /runs?limit=N requests.
func (h *RunsHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_runs"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := min(defaultListLimit, h.maxLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		var err error
		n, err = strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	runs, err := h.deps.ListRuns(r.Context(), n)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
