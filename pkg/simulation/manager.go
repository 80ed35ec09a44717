// Package simulation coordinates model instances and their persisted
// sessions. A Manager resolves factories from a model registry, keeps
// serialized model state in a session.Store, and guards every session
// with a striped lock so that concurrent operations on one session
// serialize while distinct sessions proceed in parallel.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/txn2/sim-platform/pkg/model"
	"github.com/txn2/sim-platform/pkg/registry"
	"github.com/txn2/sim-platform/pkg/session"
)

// DefaultDeltaTime is the integration interval used when a step request
// does not name one.
const DefaultDeltaTime = 1.0

// Manager owns the lifecycle of simulation sessions. Model instances
// never live in the Manager between calls; each operation rehydrates
// the model from its stored state and persists the result, so any
// session.Store backend carries the full session.
type Manager struct {
	registry *registry.Registry
	store    session.Store
	locks    sessionLocks
}

// New returns a Manager backed by the given registry and store.
func New(reg *registry.Registry, store session.Store) *Manager {
	return &Manager{registry: reg, store: store}
}

// CreateSession constructs a model instance for modelName, assigns it a
// fresh session ID, and persists its initial state. The model name and
// params are validated before any ID is allocated. Returns the new ID
// and the model's initial state.
func (m *Manager) CreateSession(ctx context.Context, modelName string, params model.Params) (string, map[string]float64, error) {
	if _, err := m.store.Cleanup(ctx); err != nil {
		slog.Warn("session cleanup failed", "error", err)
	}

	factory, err := m.registry.Resolve(modelName)
	if err != nil {
		return "", nil, err
	}
	inst, err := factory(params)
	if err != nil {
		return "", nil, fmt.Errorf("constructing %s model: %w", modelName, err)
	}

	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}
	blob, err := inst.MarshalState()
	if err != nil {
		return "", nil, fmt.Errorf("serializing session %s: %w", id, err)
	}

	sess := &session.Session{
		ID:        id,
		ModelName: modelName,
		State:     blob,
		CreatedAt: time.Now(),
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("persisting session %s: %w", id, err)
	}

	slog.Info("session created", "session_id", id, "model_name", modelName)
	return id, inst.State(), nil
}

// Step advances the session's model by dt using the given control
// input and returns the resulting state. A step that fails leaves the
// stored session untouched.
func (m *Manager) Step(ctx context.Context, id string, input, dt float64) (map[string]float64, error) {
	return m.mutate(ctx, id, func(inst model.Model) error {
		return inst.Step(input, dt)
	})
}

// Reset returns the session's model to its initial state, optionally
// overriding parameters, and returns the state after the reset.
func (m *Manager) Reset(ctx context.Context, id string, params model.Params) (map[string]float64, error) {
	return m.mutate(ctx, id, func(inst model.Model) error {
		return inst.Reset(params)
	})
}

// UpdateParams applies a partial parameter update to the session's
// model without disturbing its state, and returns the current state.
func (m *Manager) UpdateParams(ctx context.Context, id string, params model.Params) (map[string]float64, error) {
	return m.mutate(ctx, id, func(inst model.Model) error {
		return inst.ApplyParams(params)
	})
}

// GetState returns the session's current state variables.
func (m *Manager) GetState(ctx context.Context, id string) (map[string]float64, error) {
	inst, err := m.read(ctx, id)
	if err != nil {
		return nil, err
	}
	return inst.State(), nil
}

// GetHistory returns the per-step state snapshots recorded since the
// session was created or last reset.
func (m *Manager) GetHistory(ctx context.Context, id string) ([]map[string]float64, error) {
	inst, err := m.read(ctx, id)
	if err != nil {
		return nil, err
	}
	return inst.History(), nil
}

// GetLogs returns the session's event log.
func (m *Manager) GetLogs(ctx context.Context, id string) ([]string, error) {
	inst, err := m.read(ctx, id)
	if err != nil {
		return nil, err
	}
	return inst.Logs(), nil
}

// DeleteSession removes the session from the store. Deleting an
// unknown or expired session returns ErrUnknownSession.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	unlock := m.locks.lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", id, err)
	}
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}

	slog.Info("session deleted", "session_id", id, "model_name", sess.ModelName)
	return nil
}

// ListSessions returns metadata for live sessions matching f, most
// recently active first.
func (m *Manager) ListSessions(ctx context.Context, f session.Filter) ([]*session.Session, error) {
	return m.store.List(ctx, f)
}

// Models returns the sorted names of all registered model types.
func (m *Manager) Models() []string {
	return m.registry.Names()
}

// load fetches the session and rehydrates its model instance. The
// caller must hold the session's lock.
func (m *Manager) load(ctx context.Context, id string) (*session.Session, model.Model, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	if sess == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	factory, err := m.registry.Resolve(sess.ModelName)
	if err != nil {
		return nil, nil, fmt.Errorf("rehydrating session %s: %w", id, err)
	}
	inst, err := factory(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("rehydrating session %s: %w", id, err)
	}
	if err := inst.UnmarshalState(sess.State); err != nil {
		return nil, nil, fmt.Errorf("rehydrating session %s: %w", id, err)
	}
	return sess, inst, nil
}

// mutate runs fn against the session's rehydrated model and persists
// the new state. The whole cycle holds the session's lock, and a fn
// error aborts the cycle before anything is written back.
func (m *Manager) mutate(ctx context.Context, id string, fn func(model.Model) error) (map[string]float64, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	sess, inst, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(inst); err != nil {
		return nil, err
	}

	blob, err := inst.MarshalState()
	if err != nil {
		return nil, fmt.Errorf("serializing session %s: %w", id, err)
	}
	sess.State = blob
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persisting session %s: %w", id, err)
	}
	return inst.State(), nil
}

// read rehydrates the session's model for a read-only accessor and
// refreshes the session's activity so reads extend its lifetime.
func (m *Manager) read(ctx context.Context, id string) (model.Model, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	_, inst, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.store.Touch(ctx, id); err != nil {
		slog.Warn("refreshing session activity failed", "session_id", id, "error", err)
	}
	return inst, nil
}
