// Package registry maps model-type names to the factories that construct
// them. The session runtime resolves every creation and rehydration through
// a Registry.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/txn2/sim-platform/pkg/model"
)

// Registry manages model-type registration. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]model.Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]model.Factory),
	}
}

// Register inserts or overwrites the factory bound to name. Overwriting
// affects only sessions created afterwards; live sessions keep the instances
// they were built from.
func (r *Registry) Register(name string, factory model.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Resolve returns the factory bound to name.
func (r *Registry) Resolve(name string) (model.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownModel, name)
	}
	return factory, nil
}

// Names returns the registered model-type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
