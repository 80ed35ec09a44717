//go:build integration

package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (mirrors unexported api package types) ---

// SessionCreated mirrors the api initResponse.
type SessionCreated struct {
	SessionID string             `json:"session_id"`
	ModelName string             `json:"model_name"`
	State     map[string]float64 `json:"state"`
}

// SessionState mirrors the api stateResponse.
type SessionState struct {
	SessionID string             `json:"session_id"`
	State     map[string]float64 `json:"state"`
}

// SessionHistory mirrors the api historyResponse.
type SessionHistory struct {
	SessionID string               `json:"session_id"`
	History   []map[string]float64 `json:"history"`
}

// SessionLogs mirrors the api logsResponse.
type SessionLogs struct {
	SessionID string   `json:"session_id"`
	Logs      []string `json:"logs"`
}

// SessionSummary mirrors the api sessionInfo.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	ModelName    string    `json:"model_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionList mirrors the api sessionListResponse.
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// ModelList mirrors the api modelsResponse.
type ModelList struct {
	Models []string `json:"models"`
}

// APIError mirrors the api error body.
type APIError struct {
	Error string `json:"error"`
}

// --- SimClient ---

// SimClient is an HTTP client for the simulation API.
type SimClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewSimClient creates a new SimClient.
func NewSimClient(baseURL, apiKey string) *SimClient {
	return &SimClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// doRequest performs an HTTP request with auth header.
func (c *SimClient) doRequest(method, path string, body io.Reader) (*http.Response, error) {
	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Client.Do(req)
}

func (c *SimClient) get(path string) (*http.Response, error) {
	return c.doRequest(http.MethodGet, path, nil)
}

func (c *SimClient) sendJSON(method, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling body: %w", err)
	}
	return c.doRequest(method, path, bytes.NewReader(data))
}

// decodeInto decodes the response body into out and returns the status code.
func decodeInto(resp *http.Response, out any) (int, error) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

// RawGet performs a GET and returns the status code and raw body.
func (c *SimClient) RawGet(path string) (int, string, error) {
	resp, err := c.get(path)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// --- Session endpoints ---

// InitSession calls POST /api/v1/simulate/init.
func (c *SimClient) InitSession(modelName string, params map[string]float64) (*SessionCreated, int, error) {
	body := map[string]any{"model_name": modelName}
	if params != nil {
		body["params"] = params
	}
	resp, err := c.sendJSON(http.MethodPost, "/api/v1/simulate/init", body)
	if err != nil {
		return nil, 0, err
	}
	var result SessionCreated
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// StepSession calls POST /api/v1/simulate/step. A nil deltaTime requests the
// server default.
func (c *SimClient) StepSession(sessionID string, controlInput float64, deltaTime *float64) (*SessionState, int, error) {
	body := map[string]any{
		"session_id":    sessionID,
		"control_input": controlInput,
	}
	if deltaTime != nil {
		body["delta_time"] = *deltaTime
	}
	resp, err := c.sendJSON(http.MethodPost, "/api/v1/simulate/step", body)
	if err != nil {
		return nil, 0, err
	}
	var result SessionState
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// GetState calls GET /api/v1/simulate/state/{id}.
func (c *SimClient) GetState(sessionID string) (*SessionState, int, error) {
	resp, err := c.get("/api/v1/simulate/state/" + sessionID)
	if err != nil {
		return nil, 0, err
	}
	var result SessionState
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// GetHistory calls GET /api/v1/simulate/history/{id}.
func (c *SimClient) GetHistory(sessionID string) (*SessionHistory, int, error) {
	resp, err := c.get("/api/v1/simulate/history/" + sessionID)
	if err != nil {
		return nil, 0, err
	}
	var result SessionHistory
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// GetLogs calls GET /api/v1/simulate/logs/{id}.
func (c *SimClient) GetLogs(sessionID string) (*SessionLogs, int, error) {
	resp, err := c.get("/api/v1/simulate/logs/" + sessionID)
	if err != nil {
		return nil, 0, err
	}
	var result SessionLogs
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// ResetSession calls POST /api/v1/simulate/reset.
func (c *SimClient) ResetSession(sessionID string, params map[string]float64) (*SessionState, int, error) {
	body := map[string]any{"session_id": sessionID}
	if params != nil {
		body["params"] = params
	}
	resp, err := c.sendJSON(http.MethodPost, "/api/v1/simulate/reset", body)
	if err != nil {
		return nil, 0, err
	}
	var result SessionState
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// UpdateParams calls PATCH /api/v1/simulate/params.
func (c *SimClient) UpdateParams(sessionID string, params map[string]float64) (*SessionState, int, error) {
	body := map[string]any{"session_id": sessionID, "params": params}
	resp, err := c.sendJSON(http.MethodPatch, "/api/v1/simulate/params", body)
	if err != nil {
		return nil, 0, err
	}
	var result SessionState
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// ListSessions calls GET /api/v1/simulate/sessions with an optional query string.
func (c *SimClient) ListSessions(query string) (*SessionList, int, error) {
	path := "/api/v1/simulate/sessions"
	if query != "" {
		path += "?" + query
	}
	resp, err := c.get(path)
	if err != nil {
		return nil, 0, err
	}
	var result SessionList
	status, err := decodeInto(resp, &result)
	return &result, status, err
}

// DeleteSession calls DELETE /api/v1/simulate/sessions/{id}.
func (c *SimClient) DeleteSession(sessionID string) (int, error) {
	resp, err := c.doRequest(http.MethodDelete, "/api/v1/simulate/sessions/"+sessionID, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// ListModels calls GET /api/v1/simulate/models.
func (c *SimClient) ListModels() (*ModelList, int, error) {
	resp, err := c.get("/api/v1/simulate/models")
	if err != nil {
		return nil, 0, err
	}
	var result ModelList
	status, err := decodeInto(resp, &result)
	return &result, status, err
}
