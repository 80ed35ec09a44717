// Package roomtemp implements the room temperature simulation model: a
// single temperature state driven by heater power input and linear cooling
// toward ambient.
package roomtemp

import (
	"encoding/json"
	"fmt"

	"github.com/txn2/sim-platform/pkg/model"
	"github.com/txn2/sim-platform/pkg/models/ode"
)

// Parameter names accepted by the model.
const (
	ParamInitialTemp  = "initial_temp"
	ParamAmbient      = "ambient"
	ParamHeaterGain   = "heater_gain"
	ParamCoolingCoeff = "cooling_coeff"
)

// Construction defaults. Temperatures are in Celsius.
const (
	DefaultInitialTemp  = 20.0
	DefaultAmbient      = 20.0
	DefaultHeaterGain   = 0.5
	DefaultCoolingCoeff = 0.1
)

// Room models dT/dt = heater_gain*input - cooling_coeff*(T - ambient): the
// control input to Step is the heater power, and the room cools linearly
// toward ambient when the heater is off.
type Room struct {
	initialTemp  float64
	ambient      float64
	heaterGain   float64
	coolingCoeff float64
	temperature  float64

	history []map[string]float64
	logs    []string
}

// New constructs a Room from params, applying defaults for absent keys.
func New(params model.Params) (model.Model, error) {
	initial := params.Float(ParamInitialTemp, DefaultInitialTemp)
	return &Room{
		initialTemp:  initial,
		ambient:      params.Float(ParamAmbient, DefaultAmbient),
		heaterGain:   params.Float(ParamHeaterGain, DefaultHeaterGain),
		coolingCoeff: params.Float(ParamCoolingCoeff, DefaultCoolingCoeff),
		temperature:  initial,
	}, nil
}

// Step advances the room by dt with the given heater power.
func (r *Room) Step(input, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: got %g", model.ErrInvalidTimeStep, dt)
	}

	dynamics := func(temp float64) float64 {
		return r.heaterGain*input - r.coolingCoeff*(temp-r.ambient)
	}
	r.temperature = ode.RK4(dynamics, r.temperature, dt)

	r.history = append(r.history, r.snapshot())
	r.logs = append(r.logs, fmt.Sprintf("stepped with input %g, delta_time %g", input, dt))
	return nil
}

// State returns the current state snapshot.
func (r *Room) State() map[string]float64 {
	return r.snapshot()
}

// History returns past snapshots in step order.
func (r *Room) History() []map[string]float64 {
	history := make([]map[string]float64, len(r.history))
	for i, entry := range r.history {
		snap := make(map[string]float64, len(entry))
		for k, v := range entry {
			snap[k] = v
		}
		history[i] = snap
	}
	return history
}

// Logs returns the event log in append order.
func (r *Room) Logs() []string {
	return append([]string(nil), r.logs...)
}

// Reset returns the room to its initial temperature and clears history,
// keeping current parameters unless params overrides them.
func (r *Room) Reset(params model.Params) error {
	r.initialTemp = params.Float(ParamInitialTemp, r.initialTemp)
	r.ambient = params.Float(ParamAmbient, r.ambient)
	r.heaterGain = params.Float(ParamHeaterGain, r.heaterGain)
	r.coolingCoeff = params.Float(ParamCoolingCoeff, r.coolingCoeff)
	r.temperature = r.initialTemp
	r.history = nil
	r.logs = append(r.logs, model.ResetEvent(params, knownParams))
	return nil
}

// ApplyParams updates the named parameters, leaving temperature and history
// intact.
func (r *Room) ApplyParams(params model.Params) error {
	if params.Has(ParamInitialTemp) {
		r.initialTemp = params[ParamInitialTemp]
	}
	if params.Has(ParamAmbient) {
		r.ambient = params[ParamAmbient]
	}
	if params.Has(ParamHeaterGain) {
		r.heaterGain = params[ParamHeaterGain]
	}
	if params.Has(ParamCoolingCoeff) {
		r.coolingCoeff = params[ParamCoolingCoeff]
	}
	r.logs = append(r.logs, model.UpdateEvent(params, knownParams))
	return nil
}

var knownParams = map[string]bool{
	ParamInitialTemp:  true,
	ParamAmbient:      true,
	ParamHeaterGain:   true,
	ParamCoolingCoeff: true,
}

func (r *Room) snapshot() map[string]float64 {
	return map[string]float64{"temperature": r.temperature}
}

type roomState struct {
	InitialTemp  float64              `json:"initial_temp"`
	Ambient      float64              `json:"ambient"`
	HeaterGain   float64              `json:"heater_gain"`
	CoolingCoeff float64              `json:"cooling_coeff"`
	Temperature  float64              `json:"temperature"`
	History      []map[string]float64 `json:"history,omitempty"`
	Logs         []string             `json:"logs,omitempty"`
}

// MarshalState encodes the full model for storage.
func (r *Room) MarshalState() ([]byte, error) {
	return json.Marshal(roomState{
		InitialTemp:  r.initialTemp,
		Ambient:      r.ambient,
		HeaterGain:   r.heaterGain,
		CoolingCoeff: r.coolingCoeff,
		Temperature:  r.temperature,
		History:      r.history,
		Logs:         r.logs,
	})
}

// UnmarshalState restores the full model from a MarshalState encoding.
func (r *Room) UnmarshalState(data []byte) error {
	var s roomState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding room temperature state: %w", err)
	}

	r.initialTemp = s.InitialTemp
	r.ambient = s.Ambient
	r.heaterGain = s.HeaterGain
	r.coolingCoeff = s.CoolingCoeff
	r.temperature = s.Temperature
	r.history = s.History
	r.logs = s.Logs
	return nil
}

// Verify interface compliance.
var _ model.Model = (*Room)(nil)
