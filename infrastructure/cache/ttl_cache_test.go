package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_LookupHitWithinTTL(t *testing.T) {
	c := New[string]("test", 5*time.Minute)

	c.Put("user1|list|20", "payload")

	got, ok := c.Lookup("user1|list|20")
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestTTLCache_MissAtExactTTLBoundary(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New[string]("test", 5*time.Minute, WithClock[string](clock))

	c.Put("key", "payload")

	// One nanosecond before the boundary is still fresh
	now = now.Add(5*time.Minute - time.Nanosecond)
	_, ok := c.Lookup("key")
	assert.True(t, ok)

	// At exactly ttl the entry is a miss
	now = now.Add(time.Nanosecond)
	_, ok = c.Lookup("key")
	assert.False(t, ok)
}

func TestTTLCache_SetTTLRejudgesExistingEntries(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New[string]("test", 5*time.Minute, WithClock[string](clock))

	c.Put("key", "payload")
	now = now.Add(2 * time.Minute)

	_, ok := c.Lookup("key")
	assert.True(t, ok)

	// Shrinking the window below the entry's age expires it
	c.SetTTL(time.Minute)
	_, ok = c.Lookup("key")
	assert.False(t, ok)

	// Widening the window brings the same entry back
	c.SetTTL(time.Hour)
	got, ok := c.Lookup("key")
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestTTLCache_SetTTLIgnoresNonPositive(t *testing.T) {
	c := New[string]("test", 5*time.Minute)
	c.Put("key", "payload")

	c.SetTTL(0)
	c.SetTTL(-time.Minute)

	_, ok := c.Lookup("key")
	assert.True(t, ok)
}

func TestTTLCache_ExpiredEntryStillServedStale(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New[string]("test", time.Minute, WithClock[string](clock))

	c.Put("key", "payload")
	now = now.Add(time.Hour)

	_, ok := c.Lookup("key")
	assert.False(t, ok)

	stale, ok := c.LookupStale("key")
	assert.True(t, ok)
	assert.Equal(t, "payload", stale)
}

func TestTTLCache_PutOverwritesAndResetsClock(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New[string]("test", time.Minute, WithClock[string](clock))

	c.Put("key", "first")
	now = now.Add(50 * time.Second)
	c.Put("key", "second")

	// 50s after the original insert, 20s after the overwrite
	now = now.Add(20 * time.Second)
	got, ok := c.Lookup("key")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestTTLCache_PutIfNewerRejectsStaleFetch(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New[string]("test", time.Minute, WithClock[string](clock))

	// A slow fetch started at T; a faster fetch completed and cached at T+1s
	fetchStart := now
	now = now.Add(time.Second)
	c.Put("key", "fresh")

	stored := c.PutIfNewer("key", "slow-and-stale", fetchStart)
	assert.False(t, stored)

	got, _ := c.Lookup("key")
	assert.Equal(t, "fresh", got)
}

func TestTTLCache_PutIfNewerStoresOnEmptySlot(t *testing.T) {
	c := New[string]("test", time.Minute)

	stored := c.PutIfNewer("key", "payload", time.Now())
	assert.True(t, stored)

	got, ok := c.Lookup("key")
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestTTLCache_InvalidateByPredicate(t *testing.T) {
	c := New[int]("test", time.Minute)
	c.Put("user1|list|20", 1)
	c.Put("user1|search|paris|-", 2)
	c.Put("user2|list|20", 3)

	removed := c.Invalidate(func(key string) bool {
		return key[:len("user1|")] == "user1|"
	})

	assert.Equal(t, 2, removed)
	_, ok := c.Lookup("user2|list|20")
	assert.True(t, ok)
}

func TestTTLCache_InvalidateOwnerLeavesOthersAlone(t *testing.T) {
	c := New[int]("test", time.Minute)
	c.Put(ListKey("user1", 20), 1)
	c.Put(SearchKey("user1", "paris", nil), 2)
	c.Put(ListKey("user10", 20), 3)

	removed := c.InvalidateOwner("user1")

	assert.Equal(t, 2, removed)
	// "user10" shares a string prefix with "user1" but not a key prefix
	_, ok := c.Lookup(ListKey("user10", 20))
	assert.True(t, ok)
}

func TestTTLCache_InvalidateEmptyCacheIsNoOp(t *testing.T) {
	c := New[int]("test", time.Minute)

	assert.Equal(t, 0, c.InvalidateOwner("user1"))
}

func TestTTLCache_ClearRemovesEverything(t *testing.T) {
	c := New[int]("test", time.Minute)
	c.Put(ListKey("user1", 20), 1)
	c.Put(ListKey("user2", 20), 2)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.LookupStale(ListKey("user1", 20))
	assert.False(t, ok)
}
