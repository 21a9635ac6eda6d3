// Package producers maps the `kind` label of a pipeline module block to the
// Go factory that builds the corresponding content module. It plays the
// role a handler registry plays in a plugin system: the string names used
// in configuration are bound to compiled code here, and the binding is
// validated before execution.
package producers

import (
	"fmt"
	"sync"
	"time"

	"github.com/vk/textweave/internal/cache"
	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/module"
)

// Deps carries the shared collaborators a factory may wire into its module.
type Deps struct {
	// Cache is the content cache; nil means cache.Default().
	Cache *cache.Cache
	// DefaultTTL applies when a module block does not set its own TTL.
	DefaultTTL time.Duration
	// Loaders are named backing loaders supplied by the host.
	Loaders map[string]cache.Loader
}

// Factory builds a module from its configuration block.
type Factory func(blk *config.ModuleBlock, deps Deps) (module.Module, error)

// Registry holds the known producer kinds.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty producer registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a kind to its factory, replacing any previous binding.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds returns the number of registered kinds.
func (r *Registry) Kinds() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// Build instantiates every module block in the model. An unknown kind is a
// configuration error caught here, before any scheduling.
func (r *Registry) Build(model *config.Model, deps Deps) ([]module.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mods := make([]module.Module, 0, len(model.Modules))
	for _, blk := range model.Modules {
		factory, ok := r.factories[blk.Kind]
		if !ok {
			return nil, fmt.Errorf("module %q: unknown kind %q", blk.Name, blk.Kind)
		}
		m, err := factory(blk, deps)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", blk.Name, err)
		}
		mods = append(mods, m)
	}
	return mods, nil
}
