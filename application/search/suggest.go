package search

import (
	"strings"

	"github.com/wilson12358/daybook/domain/core/entities"
)

const (
	// MinPartialLen is the shortest partial query that produces suggestions
	MinPartialLen = 2
	// MaxSuggestions caps the type-ahead list
	MaxSuggestions = 10
)

// Suggest collects distinct title and tag values containing the partial query
// as a case-insensitive substring, preserving first-seen order across the
// candidate window. It feeds type-ahead, so there is no ranking: the window
// is already newest-first and first-seen order keeps recent values on top.
func Suggest(candidates []*entities.Entry, partial string) []string {
	needle := strings.ToLower(strings.TrimSpace(partial))
	if len(needle) < MinPartialLen {
		return nil
	}

	seen := make(map[string]struct{})
	var suggestions []string

	add := func(value string) bool {
		key := strings.ToLower(value)
		if _, dup := seen[key]; dup {
			return len(suggestions) < MaxSuggestions
		}
		if !strings.Contains(key, needle) {
			return true
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, value)
		return len(suggestions) < MaxSuggestions
	}

	for _, entry := range candidates {
		if entry.Title() != "" && !add(entry.Title()) {
			return suggestions
		}
		for _, tag := range entry.Tags().ToSlice() {
			if !add(tag) {
				return suggestions
			}
		}
	}

	return suggestions
}
