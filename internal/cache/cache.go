// Package cache implements the shared TTL'd content loader used by modules
// to pull expensive external data (rule stores, reference files) at most
// once per TTL window.
//
// The loader for a key runs at most once at a time no matter how many
// callers request that key concurrently: the first caller through the
// double-check becomes the loading flight, and every concurrent caller for
// the same key waits on that flight and shares its result. Contention is
// scoped per key; unrelated keys never block each other.
//
// The cache is an explicitly constructed, injectable object. Default()
// exposes the lazily-initialized process-wide instance for hosts that want
// singleton behavior.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loader produces the value for a key. It is an opaque collaborator; the
// cache only sees the returned value or error.
type Loader func(ctx context.Context, key string) (any, error)

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.createdAt) >= e.ttl
}

// flight is one in-progress load. Concurrent callers for the same key wait
// on done and share val/err.
type flight struct {
	done chan struct{}
	val  any
	err  error
}

// Cache is a TTL'd single-flight loader. The zero value is not usable; use
// New.
type Cache struct {
	// entries uses sync.Map so the unlocked presence check of the
	// double-checked pattern stays contention free.
	entries sync.Map // key string -> *entry

	mu      sync.Mutex
	flights map[string]*flight

	hits   atomic.Uint64
	misses atomic.Uint64
	loads  atomic.Uint64

	// now is swappable for expiry tests.
	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		flights: make(map[string]*flight),
		now:     time.Now,
	}
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache instance, initializing it on first
// use. It is never torn down during the process lifetime.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = New()
	})
	return defaultCache
}

// GetOrLoad returns the cached value for key, invoking loader on a miss or
// after expiry. A loader failure is returned to every caller waiting on
// that load and leaves no entry behind, so the next access retries.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	// Unlocked fast path.
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v, nil
	}

	c.mu.Lock()
	// Re-check under the lock: another flight may have published the entry
	// between the unlocked check and here.
	if v, ok := c.lookup(key); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return v, nil
	}
	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			if f.err != nil {
				return nil, f.err
			}
			c.hits.Add(1)
			return f.val, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	c.misses.Add(1)
	c.loads.Add(1)
	val, err := loader(ctx, key)
	if err != nil {
		f.err = &LoadError{Key: key, Err: err}
	} else {
		f.val = val
		c.entries.Store(key, &entry{value: val, createdAt: c.now(), ttl: ttl})
	}

	c.mu.Lock()
	delete(c.flights, key)
	c.mu.Unlock()
	close(f.done)

	return f.val, f.err
}

// Invalidate drops the entry for key, if present.
func (c *Cache) Invalidate(key string) {
	c.entries.Delete(key)
}

func (c *Cache) lookup(key string) (any, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if e.expired(c.now()) {
		c.entries.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Loads  uint64
}

// Stats returns the current counter values.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Loads:  c.loads.Load(),
	}
}
