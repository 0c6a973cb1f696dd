package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilson12358/daybook/domain/core/valueobjects"
)

// Cache keys are a pure function of a query's logical identity: ownerID
// first, then a query-kind tag, then the kind-specific parameters, joined by
// a fixed separator. Owner-first keys let the invalidation hub purge one
// owner with a single prefix match. Plain concatenation is deliberate:
// hashing the parameters would destroy the prefix structure the purge
// depends on.

// Separator joins key segments. Owner ids are UUIDs and query text is
// whitespace-trimmed, so the separator cannot occur inside a segment in a way
// that makes two distinct queries collide.
const Separator = "|"

// Query kind tags
const (
	kindList       = "list"
	kindDay        = "day"
	kindMonth      = "month"
	kindSearch     = "search"
	kindRecentTags = "recent-tags"
)

// moodSentinel marks an absent category filter in search keys
const moodSentinel = "-"

// OwnerPrefix returns the prefix shared by every key scoped to an owner
func OwnerPrefix(ownerID string) string {
	return ownerID + Separator
}

// ListKey identifies a "latest entries" query
func ListKey(ownerID string, limit int) string {
	return fmt.Sprintf("%s%s%s%s%d", ownerID, Separator, kindList, Separator, limit)
}

// DayKey identifies a per-day calendar query. Only the calendar day matters:
// two timestamps on the same day produce the same key.
func DayKey(ownerID string, day time.Time) string {
	y, m, d := day.Date()
	return fmt.Sprintf("%s%s%s%s%04d-%02d-%02d", ownerID, Separator, kindDay, Separator, y, m, d)
}

// MonthKey identifies a per-month calendar query
func MonthKey(ownerID string, year int, month time.Month) string {
	return fmt.Sprintf("%s%s%s%s%04d-%02d", ownerID, Separator, kindMonth, Separator, year, month)
}

// SearchKey identifies a free-text search. The query text is normalized so
// that "Paris" and " paris " land in the same slot; an absent mood filter is
// encoded with a sentinel.
func SearchKey(ownerID, queryText string, mood *valueobjects.MoodRating) string {
	moodSeg := moodSentinel
	if mood != nil {
		moodSeg = fmt.Sprintf("%d", mood.Value())
	}
	return fmt.Sprintf("%s%s%s%s%s%s%s", ownerID, Separator, kindSearch, Separator, NormalizeQuery(queryText), Separator, moodSeg)
}

// RecentTagsKey identifies the recent-tag-suggestion query over a window of
// the owner's newest entries
func RecentTagsKey(ownerID string, window int) string {
	return fmt.Sprintf("%s%s%s%s%d", ownerID, Separator, kindRecentTags, Separator, window)
}

// NormalizeQuery lower-cases and trims free-text input before it is used in a
// key or matched against entries
func NormalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
