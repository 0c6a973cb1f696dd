package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wilson12358/daybook/domain/core/valueobjects"
)

func TestListKey_Deterministic(t *testing.T) {
	assert.Equal(t, ListKey("user1", 20), ListKey("user1", 20))
	assert.NotEqual(t, ListKey("user1", 20), ListKey("user1", 50))
	assert.NotEqual(t, ListKey("user1", 20), ListKey("user2", 20))
}

func TestDayKey_NormalizesToCalendarDay(t *testing.T) {
	morning := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, DayKey("user1", morning), DayKey("user1", evening))
	assert.NotEqual(t, DayKey("user1", morning), DayKey("user1", nextDay))
	assert.Equal(t, "user1|day|2025-06-15", DayKey("user1", morning))
}

func TestMonthKey_Format(t *testing.T) {
	assert.Equal(t, "user1|month|2025-06", MonthKey("user1", 2025, time.June))
}

func TestSearchKey_NormalizesQueryText(t *testing.T) {
	assert.Equal(t, SearchKey("user1", "Paris", nil), SearchKey("user1", "  paris ", nil))
	assert.Equal(t, "user1|search|paris|-", SearchKey("user1", "Paris", nil))
}

func TestSearchKey_MoodFilterChangesKey(t *testing.T) {
	mood, err := valueobjects.NewMoodRating(4)
	assert.NoError(t, err)

	withMood := SearchKey("user1", "paris", &mood)
	without := SearchKey("user1", "paris", nil)

	assert.NotEqual(t, withMood, without)
	assert.Equal(t, "user1|search|paris|4", withMood)
}

func TestOwnerPrefix_CoversEveryKeyKind(t *testing.T) {
	prefix := OwnerPrefix("user1")

	keys := []string{
		ListKey("user1", 20),
		DayKey("user1", time.Now()),
		MonthKey("user1", 2025, time.June),
		SearchKey("user1", "coffee", nil),
		RecentTagsKey("user1", 100),
	}
	for _, key := range keys {
		assert.True(t, len(key) > len(prefix) && key[:len(prefix)] == prefix, "key %q", key)
	}
}
