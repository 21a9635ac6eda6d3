package module

import (
	"sort"
	"sync"
)

// Registry holds the module set for a pipeline. Registration under an
// existing id replaces the previous module, so repeated registration is
// idempotent.
type Registry struct {
	mu   sync.RWMutex
	mods map[string]Module
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{mods: make(map[string]Module)}
}

// Register adds or replaces a module under its id.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods[m.ID()] = m
}

// Get returns the module registered under id, if any.
func (r *Registry) Get(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mods[id]
	return m, ok
}

// All returns the registered modules sorted by id.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, 0, len(r.mods))
	for _, m := range r.mods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mods)
}
