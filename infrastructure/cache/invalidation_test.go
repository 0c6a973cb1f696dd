package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newHubWithCaches(t *testing.T) (*Hub, *TTLCache[int], *TTLCache[int]) {
	t.Helper()
	lists := New[int]("lists", time.Minute)
	search := New[int]("search", time.Minute)

	hub := NewHub(zap.NewNop())
	hub.Register(lists)
	hub.Register(search)
	return hub, lists, search
}

func TestHub_MutationPurgesAllCachesForOwner(t *testing.T) {
	hub, lists, search := newHubWithCaches(t)

	lists.Put(ListKey("user1", 20), 1)
	lists.Put(DayKey("user1", time.Now()), 2)
	search.Put(SearchKey("user1", "paris", nil), 3)
	lists.Put(ListKey("user2", 20), 4)

	hub.OnEntryCreated("user1")

	// Stale reads included: the entries are gone, not just expired
	_, ok := lists.LookupStale(ListKey("user1", 20))
	assert.False(t, ok)
	_, ok = search.LookupStale(SearchKey("user1", "paris", nil))
	assert.False(t, ok)

	// The other owner's entries survive
	_, ok = lists.Lookup(ListKey("user2", 20))
	assert.True(t, ok)
}

func TestHub_UpdateAndDeletePurgeLikeCreate(t *testing.T) {
	hub, lists, _ := newHubWithCaches(t)

	lists.Put(ListKey("user1", 20), 1)
	hub.OnEntryUpdated("user1")
	_, ok := lists.LookupStale(ListKey("user1", 20))
	assert.False(t, ok)

	lists.Put(ListKey("user1", 20), 1)
	hub.OnEntryDeleted("user1")
	_, ok = lists.LookupStale(ListKey("user1", 20))
	assert.False(t, ok)

	lists.Put(ListKey("user1", 20), 1)
	hub.OnEntriesDeleted("user1", 3)
	_, ok = lists.LookupStale(ListKey("user1", 20))
	assert.False(t, ok)
}

func TestHub_PurgeUnknownOwnerIsNoOp(t *testing.T) {
	hub, lists, _ := newHubWithCaches(t)
	lists.Put(ListKey("user1", 20), 1)

	hub.OnEntryDeleted("nobody")

	_, ok := lists.Lookup(ListKey("user1", 20))
	assert.True(t, ok)
}

func TestHub_ClearAllEmptiesEveryCache(t *testing.T) {
	hub, lists, search := newHubWithCaches(t)
	lists.Put(ListKey("user1", 20), 1)
	search.Put(SearchKey("user2", "rain", nil), 2)

	hub.ClearAll()

	assert.Equal(t, 0, lists.Len())
	assert.Equal(t, 0, search.Len())
}
