package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wilson12358/daybook/application/ports"
	"github.com/wilson12358/daybook/application/search"
	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/infrastructure/cache"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
	"github.com/wilson12358/daybook/pkg/observability"
)

const (
	// DefaultSearchWindow bounds how many of the owner's newest entries the
	// engine scans per search
	DefaultSearchWindow = 500

	// DefaultSuggestWindow bounds the candidate set for typing suggestions
	DefaultSuggestWindow = 100
)

// SearchService runs the in-memory search pipeline: throttle, result cache,
// candidate fetch, engine filter. All matching happens on this side of the
// record store; the store only supplies a recency-ordered candidate window.
type SearchService struct {
	repo     ports.EntryRepository
	results  *cache.TTLCache[[]*entities.Entry]
	engine   *search.Engine
	throttle *search.Throttle
	group    singleflight.Group

	suggestWindow int

	mu         sync.Mutex
	window     int
	lastResult map[string][]*entities.Entry
	debouncers map[string]*search.Debouncer
	quiet      time.Duration

	metrics *observability.Collector
	logger  *zap.Logger
}

// SearchOption configures optional search service behavior
type SearchOption func(*SearchService)

// WithSearchWindow overrides the candidate window size
func WithSearchWindow(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithDebounceQuiet overrides the quiet period for debounced searches
func WithDebounceQuiet(d time.Duration) SearchOption {
	return func(s *SearchService) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// NewSearchService creates a search service over the given repository and
// result cache. The throttle window controls the minimum spacing between
// repeated full searches by one owner; throttled calls replay the owner's
// last result instead of failing.
func NewSearchService(
	repo ports.EntryRepository,
	results *cache.TTLCache[[]*entities.Entry],
	engine *search.Engine,
	throttleWindow time.Duration,
	metrics *observability.Collector,
	logger *zap.Logger,
	opts ...SearchOption,
) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SearchService{
		repo:          repo,
		results:       results,
		engine:        engine,
		throttle:      search.NewThrottle(throttleWindow),
		window:        DefaultSearchWindow,
		suggestWindow: DefaultSuggestWindow,
		lastResult:    make(map[string][]*entities.Entry),
		debouncers:    make(map[string]*search.Debouncer),
		quiet:         search.DefaultQuiet,
		metrics:       metrics,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a smart-strategy search for the owner. An empty query with no
// mood filter is answered with an empty result immediately, before the
// throttle, the cache, and the record store are ever consulted.
func (s *SearchService) Search(ctx context.Context, ownerID, queryText string, mood *valueobjects.MoodRating) ([]*entities.Entry, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}

	query := search.ParseQuery(queryText)
	if query.IsEmpty() && mood == nil {
		return []*entities.Entry{}, nil
	}

	if !s.throttle.Allow(ownerID) {
		return s.replayLast(ownerID), nil
	}

	key := cache.SearchKey(ownerID, queryText, mood)
	if cached, ok := s.results.Lookup(key); ok {
		s.rememberLast(ownerID, cached)
		return cached, nil
	}

	s.mu.Lock()
	window := s.window
	s.mu.Unlock()

	fetchStart := time.Now()
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		candidates, err := s.repo.FetchByOwner(ctx, ownerID, window)
		if err != nil {
			return nil, err
		}

		matched := s.engine.Filter(candidates, query, mood)
		s.results.PutIfNewer(key, matched, fetchStart)
		return matched, nil
	})
	if err != nil {
		if stale, ok := s.results.LookupStale(key); ok {
			s.logger.Warn("serving stale search results after fetch failure",
				zap.String("key", key), zap.Error(err))
			s.rememberLast(ownerID, stale)
			return stale, nil
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveSearch(time.Since(fetchStart))
	}

	matched := v.([]*entities.Entry)
	s.rememberLast(ownerID, matched)
	return matched, nil
}

// DebouncedSearch schedules a search to run after the owner's input goes
// quiet. Rapid successive calls for one owner collapse so that only the
// final text is searched; deliver receives that single result. The context
// is captured at call time and must outlive the quiet period.
func (s *SearchService) DebouncedSearch(ctx context.Context, ownerID, queryText string, mood *valueobjects.MoodRating, deliver func([]*entities.Entry, error)) {
	s.mu.Lock()
	deb, ok := s.debouncers[ownerID]
	if !ok {
		deb = search.NewDebouncer(s.quiet)
		s.debouncers[ownerID] = deb
	}
	s.mu.Unlock()

	deb.Trigger(func() {
		deliver(s.Search(ctx, ownerID, queryText, mood))
	})
}

// Suggest returns up to search.MaxSuggestions typing suggestions for a
// partial query. Inputs shorter than two characters return nothing.
func (s *SearchService) Suggest(ctx context.Context, ownerID, partial string) ([]string, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}
	if len(strings.TrimSpace(partial)) < search.MinPartialLen {
		return nil, nil
	}

	candidates, err := s.repo.FetchByOwner(ctx, ownerID, s.suggestWindow)
	if err != nil {
		return nil, err
	}
	return search.Suggest(candidates, partial), nil
}

// ApplyTuning pushes new runtime-tunable values into the live pipeline:
// candidate window, result limit, debounce quiet period, and throttle window.
// Zero or negative values leave the current setting untouched.
func (s *SearchService) ApplyTuning(window, limit int, quiet, throttleWindow time.Duration) {
	s.engine.SetLimit(limit)
	if throttleWindow > 0 {
		s.throttle.SetWindow(throttleWindow)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if window > 0 {
		s.window = window
	}
	if quiet > 0 {
		s.quiet = quiet
		for _, deb := range s.debouncers {
			deb.SetQuiet(quiet)
		}
	}
}

// Reset clears the owner's throttle and debounce state, for example when the
// search screen is dismissed
func (s *SearchService) Reset(ownerID string) {
	s.throttle.Reset(ownerID)

	s.mu.Lock()
	if deb, ok := s.debouncers[ownerID]; ok {
		deb.Stop()
		delete(s.debouncers, ownerID)
	}
	delete(s.lastResult, ownerID)
	s.mu.Unlock()
}

func (s *SearchService) rememberLast(ownerID string, results []*entities.Entry) {
	s.mu.Lock()
	s.lastResult[ownerID] = results
	s.mu.Unlock()
}

func (s *SearchService) replayLast(ownerID string) []*entities.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastResult[ownerID]; ok {
		return last
	}
	return []*entities.Entry{}
}
