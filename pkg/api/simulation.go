package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/txn2/sim-platform/pkg/model"
	"github.com/txn2/sim-platform/pkg/session"
	"github.com/txn2/sim-platform/pkg/simulation"
)

const pathParamID = "id"

// initRequest is the body of POST /api/v1/simulate/init.
type initRequest struct {
	ModelName string       `json:"model_name"`
	Params    model.Params `json:"params,omitempty"`
}

// initResponse carries the new session's identity and initial state.
type initResponse struct {
	SessionID string             `json:"session_id"`
	ModelName string             `json:"model_name"`
	State     map[string]float64 `json:"state"`
}

// stepRequest is the body of POST /api/v1/simulate/step. A nil
// DeltaTime means the caller wants the default step size.
type stepRequest struct {
	SessionID    string   `json:"session_id"`
	ControlInput float64  `json:"control_input"`
	DeltaTime    *float64 `json:"delta_time,omitempty"`
}

// stateResponse carries a session's current state variables.
type stateResponse struct {
	SessionID string             `json:"session_id"`
	State     map[string]float64 `json:"state"`
}

// historyResponse carries the per-step state snapshots of a session.
type historyResponse struct {
	SessionID string               `json:"session_id"`
	History   []map[string]float64 `json:"history"`
}

// logsResponse carries the event log of a session.
type logsResponse struct {
	SessionID string   `json:"session_id"`
	Logs      []string `json:"logs"`
}

// resetRequest is the body of POST /api/v1/simulate/reset.
type resetRequest struct {
	SessionID string       `json:"session_id"`
	Params    model.Params `json:"params,omitempty"`
}

// updateParamsRequest is the body of PATCH /api/v1/simulate/params.
type updateParamsRequest struct {
	SessionID string       `json:"session_id"`
	Params    model.Params `json:"params"`
}

// sessionInfo is the metadata view of a stored session.
type sessionInfo struct {
	SessionID    string    `json:"session_id"`
	ModelName    string    `json:"model_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// sessionListResponse is the response of GET /api/v1/simulate/sessions.
type sessionListResponse struct {
	Sessions []sessionInfo `json:"sessions"`
}

// modelsResponse is the response of GET /api/v1/simulate/models.
type modelsResponse struct {
	Models []string `json:"models"`
}

// InitSession handles POST /api/v1/simulate/init.
func (h *Handler) InitSession(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModelName == "" {
		writeError(w, http.StatusBadRequest, "model_name is required")
		return
	}

	id, state, err := h.manager.CreateSession(r.Context(), req.ModelName, req.Params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, initResponse{
		SessionID: id,
		ModelName: req.ModelName,
		State:     state,
	})
}

// StepSession handles POST /api/v1/simulate/step.
func (h *Handler) StepSession(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	deltaTime := simulation.DefaultDeltaTime
	if req.DeltaTime != nil {
		deltaTime = *req.DeltaTime
	}

	state, err := h.manager.Step(r.Context(), req.SessionID, req.ControlInput, deltaTime)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{SessionID: req.SessionID, State: state})
}

// GetState handles GET /api/v1/simulate/state/{id}.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(pathParamID)

	state, err := h.manager.GetState(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{SessionID: id, State: state})
}

// GetHistory handles GET /api/v1/simulate/history/{id}.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(pathParamID)

	history, err := h.manager.GetHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if history == nil {
		history = []map[string]float64{}
	}

	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, History: history})
}

// GetLogs handles GET /api/v1/simulate/logs/{id}.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(pathParamID)

	logs, err := h.manager.GetLogs(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if logs == nil {
		logs = []string{}
	}

	writeJSON(w, http.StatusOK, logsResponse{SessionID: id, Logs: logs})
}

// ResetSession handles POST /api/v1/simulate/reset.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	state, err := h.manager.Reset(r.Context(), req.SessionID, req.Params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{SessionID: req.SessionID, State: state})
}

// UpdateParams handles PATCH /api/v1/simulate/params.
func (h *Handler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var req updateParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	state, err := h.manager.UpdateParams(r.Context(), req.SessionID, req.Params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{SessionID: req.SessionID, State: state})
}

// ListSessions handles GET /api/v1/simulate/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	filter := session.Filter{ModelName: r.URL.Query().Get("model_name")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	sessions, err := h.manager.ListSessions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	infos := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sessionInfo{
			SessionID:    sess.ID,
			ModelName:    sess.ModelName,
			CreatedAt:    sess.CreatedAt,
			LastActiveAt: sess.LastActiveAt,
			ExpiresAt:    sess.ExpiresAt,
		})
	}

	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: infos})
}

// DeleteSession handles DELETE /api/v1/simulate/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(pathParamID)

	if err := h.manager.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListModels handles GET /api/v1/simulate/models.
func (h *Handler) ListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{Models: h.manager.Models()})
}
