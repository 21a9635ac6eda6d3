// Package blackboard implements the shared key/value context that content
// modules read and write across batches.
//
// Writes are never applied directly. Each module's writes are staged while
// its batch is running and committed together at the batch boundary, in
// ascending module-id order. A module therefore only ever observes values
// committed by strictly earlier batches, regardless of how the goroutines
// inside its own batch happened to interleave.
package blackboard

import (
	"sort"
	"sync"
)

// Reader is the read-only view of committed blackboard state handed to
// modules during execution.
type Reader interface {
	// Get returns the committed value for key, if any.
	Get(key string) (any, bool)
	// GetDefault returns the committed value for key, or def if absent.
	GetDefault(key string, def any) any
}

// Board is the concrete blackboard for a single pipeline run. A Board is
// created fresh per run and is safe for concurrent use.
type Board struct {
	mu        sync.RWMutex
	committed map[string]any
	staged    map[string]map[string]any // module id -> pending writes
}

// New creates an empty Board.
func New() *Board {
	return &Board{
		committed: make(map[string]any),
		staged:    make(map[string]map[string]any),
	}
}

// Get returns the committed value for key, if any.
func (b *Board) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.committed[key]
	return v, ok
}

// GetDefault returns the committed value for key, or def if absent.
func (b *Board) GetDefault(key string, def any) any {
	if v, ok := b.Get(key); ok {
		return v
	}
	return def
}

// StageWrites buffers a module's writes until the next CommitBatch call.
// Staging again for the same module id merges over earlier staged keys.
func (b *Board) StageWrites(moduleID string, writes map[string]any) {
	if len(writes) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	pending, ok := b.staged[moduleID]
	if !ok {
		pending = make(map[string]any, len(writes))
		b.staged[moduleID] = pending
	}
	for k, v := range writes {
		pending[k] = v
	}
}

// CommitBatch applies the staged writes of the given module ids to the
// committed state in ascending id order, then clears their staging areas.
// The fixed order makes last-writer-wins deterministic when two modules in
// one batch write the same key.
func (b *Board) CommitBatch(moduleIDs []string) {
	ids := make([]string, len(moduleIDs))
	copy(ids, moduleIDs)
	sort.Strings(ids)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		for k, v := range b.staged[id] {
			b.committed[k] = v
		}
		delete(b.staged, id)
	}
}

// Snapshot returns a copy of the committed state. Intended for metadata and
// tests, not for module reads.
func (b *Board) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.committed))
	for k, v := range b.committed {
		out[k] = v
	}
	return out
}
