// Package watertank implements the water tank simulation model: a single
// level state driven by a controllable inflow and a gravity-driven outflow
// proportional to the current level.
package watertank

import (
	"encoding/json"
	"fmt"

	"github.com/txn2/sim-platform/pkg/model"
	"github.com/txn2/sim-platform/pkg/models/ode"
)

// Parameter names accepted by the model.
const (
	ParamCapacity     = "capacity"
	ParamInflow       = "inflow"
	ParamOutflowCoeff = "outflow_coeff"
)

// Construction defaults.
const (
	DefaultCapacity     = 100.0
	DefaultInflow       = 0.0
	DefaultOutflowCoeff = 0.1
)

// Tank is a water tank with configurable capacity, base inflow, and a
// level-proportional outflow coefficient. The control input to Step is the
// inflow rate applied during that step; a negative input models active
// draining. The level is clamped to [0, capacity] after each step.
type Tank struct {
	capacity     float64
	inflow       float64
	outflowCoeff float64
	level        float64

	history []map[string]float64
	logs    []string
}

// New constructs a Tank from params, applying defaults for absent keys.
// Capacity must be positive.
func New(params model.Params) (model.Model, error) {
	capacity := params.Float(ParamCapacity, DefaultCapacity)
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: tank capacity must be positive, got %g", model.ErrInvalidParams, capacity)
	}

	return &Tank{
		capacity:     capacity,
		inflow:       params.Float(ParamInflow, DefaultInflow),
		outflowCoeff: params.Float(ParamOutflowCoeff, DefaultOutflowCoeff),
	}, nil
}

// Step advances the tank by dt with the given inflow rate.
func (t *Tank) Step(input, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: got %g", model.ErrInvalidTimeStep, dt)
	}

	// Outflow only applies while there is water in the tank.
	dynamics := func(level float64) float64 {
		return input - t.outflowCoeff*max(0.0, level)
	}
	level := ode.RK4(dynamics, t.level, dt)

	t.level = min(max(0.0, level), t.capacity)
	t.history = append(t.history, t.snapshot())
	t.logs = append(t.logs, fmt.Sprintf("stepped with input %g, delta_time %g", input, dt))
	return nil
}

// State returns the current state snapshot.
func (t *Tank) State() map[string]float64 {
	return t.snapshot()
}

// History returns past snapshots in step order.
func (t *Tank) History() []map[string]float64 {
	history := make([]map[string]float64, len(t.history))
	for i, entry := range t.history {
		snap := make(map[string]float64, len(entry))
		for k, v := range entry {
			snap[k] = v
		}
		history[i] = snap
	}
	return history
}

// Logs returns the event log in append order.
func (t *Tank) Logs() []string {
	return append([]string(nil), t.logs...)
}

// Reset empties the tank and clears history, keeping current parameters
// unless params overrides them. The event log survives resets.
func (t *Tank) Reset(params model.Params) error {
	capacity := params.Float(ParamCapacity, t.capacity)
	if capacity <= 0 {
		return fmt.Errorf("%w: tank capacity must be positive, got %g", model.ErrInvalidParams, capacity)
	}

	t.capacity = capacity
	t.inflow = params.Float(ParamInflow, t.inflow)
	t.outflowCoeff = params.Float(ParamOutflowCoeff, t.outflowCoeff)
	t.level = 0.0
	t.history = nil
	t.logs = append(t.logs, model.ResetEvent(params, knownParams))
	return nil
}

// ApplyParams updates the named parameters, leaving level and history intact.
func (t *Tank) ApplyParams(params model.Params) error {
	if params.Has(ParamCapacity) && params[ParamCapacity] <= 0 {
		return fmt.Errorf("%w: tank capacity must be positive, got %g", model.ErrInvalidParams, params[ParamCapacity])
	}

	if params.Has(ParamCapacity) {
		t.capacity = params[ParamCapacity]
	}
	if params.Has(ParamInflow) {
		t.inflow = params[ParamInflow]
	}
	if params.Has(ParamOutflowCoeff) {
		t.outflowCoeff = params[ParamOutflowCoeff]
	}
	t.logs = append(t.logs, model.UpdateEvent(params, knownParams))
	return nil
}

// knownParams is the set of parameter names the tank consumes.
var knownParams = map[string]bool{
	ParamCapacity:     true,
	ParamInflow:       true,
	ParamOutflowCoeff: true,
}

func (t *Tank) snapshot() map[string]float64 {
	return map[string]float64{"level": t.level}
}

// tankState is the serialized form: parameters, state, history, and logs all
// survive a round-trip.
type tankState struct {
	Capacity     float64              `json:"capacity"`
	Inflow       float64              `json:"inflow"`
	OutflowCoeff float64              `json:"outflow_coeff"`
	Level        float64              `json:"level"`
	History      []map[string]float64 `json:"history,omitempty"`
	Logs         []string             `json:"logs,omitempty"`
}

// MarshalState encodes the full model for storage.
func (t *Tank) MarshalState() ([]byte, error) {
	return json.Marshal(tankState{
		Capacity:     t.capacity,
		Inflow:       t.inflow,
		OutflowCoeff: t.outflowCoeff,
		Level:        t.level,
		History:      t.history,
		Logs:         t.logs,
	})
}

// UnmarshalState restores the full model from a MarshalState encoding.
func (t *Tank) UnmarshalState(data []byte) error {
	var s tankState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding water tank state: %w", err)
	}

	t.capacity = s.Capacity
	t.inflow = s.Inflow
	t.outflowCoeff = s.OutflowCoeff
	t.level = s.Level
	t.history = s.History
	t.logs = s.Logs
	return nil
}

// Verify interface compliance.
var _ model.Model = (*Tank)(nil)
