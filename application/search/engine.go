// Package search implements the in-memory search engine: multi-field
// substring matching over a bounded candidate window, type-ahead suggestions,
// and the debounce/throttle controls for interactive callers.
package search

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
)

// Strategy names a matching predicate. Smart is the default; the single-field
// variants are strict subsets of it for callers that want cheaper, more
// predictable matching.
type Strategy string

const (
	StrategySmart    Strategy = "smart"
	StrategyTitle    Strategy = "title"
	StrategyBody     Strategy = "body"
	StrategyTags     Strategy = "tags"
	StrategyFullText Strategy = "fulltext"
)

// Words of this length or shorter are noise and carry no signal in the smart
// strategy's word-level matching.
const noiseWordLen = 2

// DefaultLimit bounds how many matches one search returns
const DefaultLimit = 50

// Query is a parsed, normalized free-text query
type Query struct {
	// Raw is the full query, case-folded and trimmed, used for phrase matching
	Raw string
	// Words are the significant words, noise words already discarded
	Words []string
}

// ParseQuery normalizes and splits a free-text query
func ParseQuery(text string) Query {
	raw := strings.ToLower(strings.TrimSpace(text))

	var words []string
	for _, w := range strings.Fields(raw) {
		if len(w) > noiseWordLen {
			words = append(words, w)
		}
	}

	return Query{Raw: raw, Words: words}
}

// IsEmpty reports whether the query has no usable text
func (q Query) IsEmpty() bool {
	return q.Raw == ""
}

// Engine scans candidate windows of entries and returns ranked matches
type Engine struct {
	strategy Strategy

	mu    sync.RWMutex
	limit int
}

// NewEngine creates an engine with the given strategy; a zero limit falls
// back to DefaultLimit
func NewEngine(strategy Strategy, limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{strategy: strategy, limit: limit}
}

// SetLimit changes how many matches subsequent searches return. Non-positive
// values are ignored.
func (e *Engine) SetLimit(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	e.limit = n
	e.mu.Unlock()
}

func (e *Engine) resultLimit() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limit
}

// Filter returns the candidates matching the query and optional mood filter,
// ordered by occurredAt descending and capped at the engine's limit.
//
// The whole window is scanned until limit matches are collected; matches late
// in the window are not dropped just because many early candidates missed.
// The window itself is bounded by the caller, which keeps latency capped.
func (e *Engine) Filter(candidates []*entities.Entry, query Query, mood *valueobjects.MoodRating) []*entities.Entry {
	ordered := make([]*entities.Entry, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt().After(ordered[j].OccurredAt())
	})

	limit := e.resultLimit()
	results := make([]*entities.Entry, 0, limit)
	for _, entry := range ordered {
		if mood != nil && !entry.Mood().Equals(*mood) {
			continue
		}
		if !e.matches(entry, query) {
			continue
		}
		results = append(results, entry)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// matches applies the engine's strategy to one entry
func (e *Engine) matches(entry *entities.Entry, q Query) bool {
	if q.IsEmpty() {
		// A mood-only search has no text predicate to fail
		return true
	}

	title := strings.ToLower(entry.Title())
	body := strings.ToLower(entry.Body())

	switch e.strategy {
	case StrategyTitle:
		return strings.Contains(title, q.Raw)
	case StrategyBody:
		return strings.Contains(body, q.Raw)
	case StrategyTags:
		return entry.Tags().ContainsSubstring(q.Raw)
	case StrategyFullText:
		return strings.Contains(title, q.Raw) ||
			strings.Contains(body, q.Raw) ||
			entry.Tags().ContainsSubstring(q.Raw)
	default:
		return matchSmart(entry, title, body, q)
	}
}

// matchSmart is the default, multi-field predicate:
//
//  1. the full query as a phrase in title or body matches immediately;
//  2. with several significant words, at least half of them (ceil n/2) must
//     appear in title, body, or any tag, order-independent;
//  3. a single significant word matches as a substring of title, body, or
//     any tag.
func matchSmart(entry *entities.Entry, title, body string, q Query) bool {
	if strings.Contains(title, q.Raw) || strings.Contains(body, q.Raw) {
		return true
	}

	switch len(q.Words) {
	case 0:
		// Every word was noise; the phrase check above was the only shot
		return false
	case 1:
		return wordInEntry(entry, title, body, q.Words[0])
	default:
		found := 0
		for _, w := range q.Words {
			if wordInEntry(entry, title, body, w) {
				found++
			}
		}
		threshold := int(math.Ceil(float64(len(q.Words)) / 2))
		return found >= threshold
	}
}

func wordInEntry(entry *entities.Entry, title, body, word string) bool {
	return strings.Contains(title, word) ||
		strings.Contains(body, word) ||
		entry.Tags().ContainsSubstring(word)
}
