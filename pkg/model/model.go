// Package model defines the capability contract every simulation model type
// must satisfy to be driven by the session runtime: advancing through time,
// snapshotting state, resetting, reconfiguring, and an explicit serialization
// form that survives storage round-trips.
package model

// Model is the interface implemented by all simulation model types.
//
// A model owns three pieces of data: its current physical state, an ordered
// append-only history of past state snapshots (one appended per Step), and an
// ordered append-only log of human-readable event strings (one appended per
// mutating operation). Getters return independent copies so callers can never
// alias the canonical record.
type Model interface {
	// Step advances the simulation by dt using the given control input,
	// appends the resulting state snapshot to history, and appends a log
	// entry describing the operation. Fails wrapping ErrInvalidTimeStep if
	// dt <= 0, leaving state, history, and logs untouched.
	Step(input, dt float64) error

	// State returns the current state as a flat name-to-value mapping. Pure
	// read; the returned map is a copy the caller may mutate freely.
	State() map[string]float64

	// History returns past state snapshots in step order.
	History() []map[string]float64

	// Logs returns the event log in append order.
	Logs() []string

	// Reset restores the model to its construction-time invariants, or to
	// newly supplied parameters. History is cleared, the event log is kept,
	// and a log entry records the reset. Invalid parameter values fail
	// wrapping ErrInvalidParams with no state change.
	Reset(params Params) error

	// ApplyParams updates the named parameters, leaving state and history
	// intact, and appends a log entry naming what changed. Unknown keys are
	// ignored but named in the log entry. Invalid values for known
	// parameters fail wrapping ErrInvalidParams with no state change.
	ApplyParams(params Params) error

	// MarshalState encodes the full model (parameters, current state,
	// history, logs) for storage.
	MarshalState() ([]byte, error)

	// UnmarshalState restores the full model from a MarshalState encoding,
	// replacing all current contents.
	UnmarshalState(data []byte) error
}

// Factory constructs a model instance from construction parameters. A nil or
// empty Params must yield a usable model with its documented defaults; the
// session runtime relies on this when rehydrating stored sessions. Factories
// fail wrapping ErrInvalidParams when a parameter value is rejected.
type Factory func(params Params) (Model, error)
