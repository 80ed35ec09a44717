package model

import "errors"

// Contract error conditions. The session runtime and the HTTP boundary match
// these with errors.Is; implementations wrap them with context via %w.
var (
	// ErrUnknownModel is returned when resolving a model-type name that was
	// never registered.
	ErrUnknownModel = errors.New("unknown model")

	// ErrInvalidTimeStep is returned by Step when the time step is not
	// positive.
	ErrInvalidTimeStep = errors.New("time step must be positive")

	// ErrInvalidParams is returned when a model rejects construction, reset,
	// or reconfiguration parameters.
	ErrInvalidParams = errors.New("invalid model parameters")
)
