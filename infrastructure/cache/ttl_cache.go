// Package cache implements the process-local query cache: a fixed-TTL,
// string-keyed cache, the deterministic key builder for every query shape,
// and the invalidation hub that purges owner-scoped entries on mutation.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/pkg/observability"
)

// TTLCache is a read-through cache with one fixed expiry window per instance.
// Two instances exist in the system: a short-TTL list/calendar cache and a
// longer-TTL search cache.
//
// Expiry is lazy and checked on read with a strict now - insertedAt < ttl
// comparison; at exactly ttl the entry is a miss. Expired entries are kept
// until overwritten or invalidated so that LookupStale can serve them as a
// degraded fallback when the record store is unreachable. There is no size or
// LRU eviction: entries leave only by overwrite or explicit invalidation,
// which holds at single-user diary scale.
type TTLCache[T any] struct {
	name    string
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	now     func() time.Time
	metrics *observability.Collector
	logger  *zap.Logger
}

type cacheEntry[T any] struct {
	payload    T
	insertedAt time.Time
}

// Option configures a TTLCache
type Option[T any] func(*TTLCache[T])

// WithClock overrides the time source so tests can step across the expiry boundary
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTLCache[T]) { c.now = now }
}

// WithMetrics wires hit/miss/invalidation counters
func WithMetrics[T any](m *observability.Collector) Option[T] {
	return func(c *TTLCache[T]) { c.metrics = m }
}

// WithLogger attaches a logger
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(c *TTLCache[T]) { c.logger = logger }
}

// New creates a TTLCache with the given instance name and expiry window
func New[T any](name string, ttl time.Duration, opts ...Option[T]) *TTLCache[T] {
	c := &TTLCache[T]{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cache instance name
func (c *TTLCache[T]) Name() string {
	return c.name
}

// SetTTL changes the expiry window. Existing entries are judged against the
// new window on their next lookup; non-positive values are ignored.
func (c *TTLCache[T]) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}

// Lookup returns the payload for key if a fresh entry exists. A missing or
// expired entry is a miss; the caller is expected to fetch and Put.
func (c *TTLCache[T]) Lookup(key string) (T, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	ttl := c.ttl
	c.mu.RUnlock()

	if !exists || c.now().Sub(entry.insertedAt) >= ttl {
		c.countMiss()
		var zero T
		return zero, false
	}

	c.countHit()
	return entry.payload, true
}

// LookupStale returns the payload for key regardless of expiry. Used as the
// degraded fallback when a fresh fetch fails: a stale list beats a blank screen.
func (c *TTLCache[T]) LookupStale(key string) (T, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		var zero T
		return zero, false
	}
	return entry.payload, true
}

// Put unconditionally stores payload under key with insertedAt = now,
// overwriting any existing entry.
func (c *TTLCache[T]) Put(key string, payload T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[T]{payload: payload, insertedAt: c.now()}
}

// PutIfNewer stores payload only if no entry newer than fetchedAt exists for
// key. It is the last-write-wins tie-break for in-flight fetches: a response
// from a fetch that started before the current entry was inserted must not
// clobber the fresher data. Returns whether the payload was stored.
func (c *TTLCache[T]) PutIfNewer(key string, payload T, fetchedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.entries[key]; exists && existing.insertedAt.After(fetchedAt) {
		return false
	}
	c.entries[key] = cacheEntry[T]{payload: payload, insertedAt: c.now()}
	return true
}

// Invalidate removes every entry whose key matches the predicate and returns
// the number removed. Removing from an empty cache is a no-op.
func (c *TTLCache[T]) Invalidate(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}

	c.countInvalidated(removed)
	return removed
}

// InvalidateOwner removes every entry scoped to the given owner
func (c *TTLCache[T]) InvalidateOwner(ownerID string) int {
	prefix := OwnerPrefix(ownerID)
	removed := c.Invalidate(func(key string) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})

	if removed > 0 {
		c.logger.Debug("purged owner cache entries",
			zap.String("cache", c.name),
			zap.String("ownerID", ownerID),
			zap.Int("removed", removed),
		)
	}
	return removed
}

// Clear removes all entries unconditionally
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.countInvalidated(len(c.entries))
	c.entries = make(map[string]cacheEntry[T])
}

// Len returns the number of entries, expired ones included
func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache[T]) countHit() {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(c.name).Inc()
	}
}

func (c *TTLCache[T]) countMiss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
}

func (c *TTLCache[T]) countInvalidated(n int) {
	if c.metrics != nil && n > 0 {
		c.metrics.CacheInvalidations.WithLabelValues(c.name).Add(float64(n))
	}
}
