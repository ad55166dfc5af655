package domain

import (
	"sync"

	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/logger"
)

// Registry collects the domain managers a host discovered, in discovery
// order.
type Registry struct {
	entries []StateManager
	lookup  map[string]StateManager
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]StateManager, 0),
		lookup:  make(map[string]StateManager),
	}
}

// Register adds a manager. Names must be unique.
func (r *Registry) Register(m StateManager) error {
	if m == nil {
		return errors.Configuration("cannot register a nil domain manager")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.lookup[name]; exists {
		return errors.Configuration("domain manager %s already registered", name)
	}

	r.entries = append(r.entries, m)
	r.lookup[name] = m

	logger.Debug("Domain manager registered", map[string]interface{}{
		logger.FieldDomain: name,
		"source":           m.SourceLocation(),
		"virtual_path":     m.VirtualPath(),
	})
	return nil
}

// RegisterAll registers each manager in order and stops at the first error.
func (r *Registry) RegisterAll(managers ...StateManager) error {
	for _, m := range managers {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a manager by name.
func (r *Registry) Get(name string) (StateManager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.lookup[name]
	return m, ok
}

// All returns every manager in registration order.
func (r *Registry) All() []StateManager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]StateManager, len(r.entries))
	copy(result, r.entries)
	return result
}

// Len returns the number of registered managers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
