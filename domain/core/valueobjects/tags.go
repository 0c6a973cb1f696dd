package valueobjects

import (
	"strings"
)

// TagSet holds an entry's tags, case-normalized at construction time so that
// search and suggestion lookups never have to fold case again. Order of first
// appearance is preserved; duplicates and blanks are dropped.
type TagSet struct {
	values []string
}

// NewTagSet builds a normalized tag set from raw user input
func NewTagSet(raw []string) TagSet {
	seen := make(map[string]struct{}, len(raw))
	values := make([]string, 0, len(raw))

	for _, tag := range raw {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		values = append(values, normalized)
	}

	return TagSet{values: values}
}

// ToSlice returns a copy of the tags in first-appearance order
func (t TagSet) ToSlice() []string {
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

// Contains reports whether the set holds the given tag (input is folded)
func (t TagSet) Contains(tag string) bool {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	for _, v := range t.values {
		if v == normalized {
			return true
		}
	}
	return false
}

// ContainsSubstring reports whether any tag contains the given substring.
// The needle must already be case-folded by the caller.
func (t TagSet) ContainsSubstring(needle string) bool {
	for _, v := range t.values {
		if strings.Contains(v, needle) {
			return true
		}
	}
	return false
}

// Len returns the number of tags
func (t TagSet) Len() int {
	return len(t.values)
}
