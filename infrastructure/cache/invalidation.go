package cache

import (
	"sync"

	"go.uber.org/zap"
)

// Purger is the slice of TTLCache the invalidation hub needs. Both cache
// instances register under it regardless of payload type.
type Purger interface {
	Name() string
	InvalidateOwner(ownerID string) int
	Clear()
}

// Hub guarantees read-after-write consistency at the cache boundary: after
// any successful entry mutation, every cache entry scoped to the affected
// owner is purged, so the next read is a guaranteed miss.
//
// Invalidation is coarse: everything for the owner goes, rather than only the
// query shapes the mutation could have touched. Tracking which cached queries
// might include a given entry is not worth the bookkeeping at this scale.
type Hub struct {
	mu      sync.RWMutex
	purgers []Purger
	logger  *zap.Logger
}

// NewHub creates an invalidation hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger}
}

// Register adds a cache instance to the purge set
func (h *Hub) Register(p Purger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.purgers = append(h.purgers, p)
}

// OnEntryCreated purges the owner's cache entries after a successful create
func (h *Hub) OnEntryCreated(ownerID string) {
	h.purge(ownerID, "create")
}

// OnEntryUpdated purges the owner's cache entries after a successful update
func (h *Hub) OnEntryUpdated(ownerID string) {
	h.purge(ownerID, "update")
}

// OnEntryDeleted purges the owner's cache entries after a successful delete
func (h *Hub) OnEntryDeleted(ownerID string) {
	h.purge(ownerID, "delete")
}

// OnEntriesDeleted is the batch variant; one purge covers the whole batch
func (h *Hub) OnEntriesDeleted(ownerID string, count int) {
	h.purge(ownerID, "batch-delete")
}

// ClearAll empties every registered cache. Called on sign-out so a device
// switch cannot leak one account's cached entries to another.
func (h *Hub) ClearAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, p := range h.purgers {
		p.Clear()
	}
	h.logger.Info("cleared all caches", zap.Int("caches", len(h.purgers)))
}

// purge runs synchronously so that a mutation-then-read issued in program
// order observes the mutation. Purging an empty or unregistered cache is a
// silent no-op.
func (h *Hub) purge(ownerID, reason string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, p := range h.purgers {
		total += p.InvalidateOwner(ownerID)
	}

	if total > 0 {
		h.logger.Debug("invalidated owner caches",
			zap.String("ownerID", ownerID),
			zap.String("reason", reason),
			zap.Int("removed", total),
		)
	}
}
