// Package api exposes the simulation runtime over REST endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/txn2/sim-platform/pkg/model"
	"github.com/txn2/sim-platform/pkg/simulation"
)

// Handler provides the simulation REST API endpoints.
type Handler struct {
	mux        *http.ServeMux
	manager    *simulation.Manager
	authMiddle Middleware
}

// NewHandler creates a new simulation API handler. A nil authMiddle
// leaves the endpoints open.
func NewHandler(manager *simulation.Manager, authMiddle Middleware) *Handler {
	h := &Handler{
		mux:        http.NewServeMux(),
		manager:    manager,
		authMiddle: authMiddle,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authMiddle != nil {
		h.authMiddle(h.mux).ServeHTTP(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all simulation API routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /api/v1/simulate/init", h.InitSession)
	h.mux.HandleFunc("POST /api/v1/simulate/step", h.StepSession)
	h.mux.HandleFunc("GET /api/v1/simulate/state/{id}", h.GetState)
	h.mux.HandleFunc("GET /api/v1/simulate/history/{id}", h.GetHistory)
	h.mux.HandleFunc("GET /api/v1/simulate/logs/{id}", h.GetLogs)
	h.mux.HandleFunc("POST /api/v1/simulate/reset", h.ResetSession)
	h.mux.HandleFunc("PATCH /api/v1/simulate/params", h.UpdateParams)
	h.mux.HandleFunc("GET /api/v1/simulate/sessions", h.ListSessions)
	h.mux.HandleFunc("DELETE /api/v1/simulate/sessions/{id}", h.DeleteSession)
	h.mux.HandleFunc("GET /api/v1/simulate/models", h.ListModels)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps simulation errors onto HTTP status codes. A
// missing session is 404, a rejected request is 400, and anything else
// is an internal failure whose detail stays out of the response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrUnknownSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrUnknownModel),
		errors.Is(err, model.ErrInvalidTimeStep),
		errors.Is(err, model.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("simulation request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
