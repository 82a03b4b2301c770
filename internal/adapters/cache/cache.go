// Package cache implements the short-lived in-process caches that
// shield upstream result providers from polling bursts. Entries are
// whole-value replacements under a single TTL; concurrent loads for
// the same key are coalesced into one in-flight call.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lapedge/lapedge/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Loader produces a value for a key on a cache miss.
type Loader func(ctx context.Context) (any, error)

type entry struct {
	data     any
	storedAt time.Time
}

// Cache is a TTL map. An entry older than the TTL is a miss; the cache
// itself lives for the process lifetime and only shrinks on Clear.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	name string
	ttl  time.Duration
	now  func() time.Time
	sf   singleflight.Group
}

// New builds a Cache with the given TTL.
func New(name string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		name:    name,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if it is still fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		metrics.RecordCacheMiss(c.name)
		return nil, false
	}
	metrics.RecordCacheHit(c.name)
	return e.data, true
}

// Set stores a value under key, replacing any previous entry.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	c.entries[key] = entry{data: v, storedAt: c.now()}
	c.mu.Unlock()
}

// GetOrLoad returns the fresh cached value for key, or runs loader to
// produce one. Concurrent callers for the same key share a single
// loader invocation; a loader error is returned to every waiter and
// nothing is cached.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader Loader) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		// A waiter queued behind the first loader may find the value
		// already stored by the time it gets here.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Sub(e.storedAt) < c.ttl {
			return e.data, nil
		}

		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, data)
		return data, nil
	})
	if shared {
		metrics.RecordCacheCoalesced(c.name)
	}
	return v, err
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Name identifies the cache in stats and metrics.
func (c *Cache) Name() string { return c.name }
