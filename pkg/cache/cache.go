package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pullscope/pullscope/pkg/core"
)

type entry struct {
	snapshot  *core.ReportSnapshot
	createdAt time.Time
}

// FetchFunc fetches and normalizes the snapshot a cache miss needs.
type FetchFunc func(ctx context.Context) (*core.ReportSnapshot, error)

// Cache is the fingerprint-keyed snapshot cache (C5). A single instance is
// shared process-wide. Concurrent misses on the same fingerprint coalesce
// onto one FetchFunc invocation via singleflight; capacity overflow evicts
// by least-recent access.
type Cache struct {
	mu    sync.Mutex
	store *lru[core.Fingerprint, *entry]
	ttl   time.Duration
	group singleflight.Group
}

// New builds a Cache with the given capacity (entry count) and soft TTL.
// A zero ttl disables expiry.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		store: newLRU[core.Fingerprint, *entry](capacity),
		ttl:   ttl,
	}
}

// Get returns the snapshot for fingerprint, fetching via fetch on a miss.
// fresh=true bypasses and invalidates any cached entry before fetching.
// All callers racing the same fingerprint receive the same snapshot or the
// same error; eviction never interrupts an in-flight fetch since the fetch
// itself holds no lock — only the final publish does.
func (c *Cache) Get(ctx context.Context, fingerprint core.Fingerprint, fresh bool, fetch FetchFunc) (*core.ReportSnapshot, error) {
	if fresh {
		c.mu.Lock()
		c.store.delete(fingerprint)
		c.mu.Unlock()
	} else if snap, ok := c.lookup(fingerprint); ok {
		return snap, nil
	}

	v, err, _ := c.group.Do(string(fingerprint), func() (any, error) {
		snap, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.publish(fingerprint, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.ReportSnapshot), nil
}

// Peek reports whether fingerprint currently has a live cached entry,
// without triggering a fetch or affecting single-flight state. Used by
// the orchestrator's admission policy to distinguish a cache hit (return
// inline, no job) from a miss (admit a job).
func (c *Cache) Peek(fingerprint core.Fingerprint) (*core.ReportSnapshot, bool) {
	return c.lookup(fingerprint)
}

// lookup returns a live (non-expired) cached snapshot without triggering a
// fetch.
func (c *Cache) lookup(fingerprint core.Fingerprint) (*core.ReportSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.get(fingerprint)
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.createdAt) >= c.ttl {
		return nil, false
	}
	return e.snapshot, true
}

func (c *Cache) publish(fingerprint core.Fingerprint, snap *core.ReportSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.put(fingerprint, &entry{snapshot: snap, createdAt: time.Now()})
}

// Len reports the current number of cached entries, for tests and metrics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.len()
}

// Invalidate removes a single entry, if present.
func (c *Cache) Invalidate(fingerprint core.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.delete(fingerprint)
}
