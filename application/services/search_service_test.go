package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/search"
	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/infrastructure/cache"
	"github.com/wilson12358/daybook/tests/fixtures"
	"github.com/wilson12358/daybook/tests/mocks"
)

func newSearchService(t *testing.T, repo *mocks.MockEntryRepository, throttleWindow time.Duration) (*SearchService, *cache.TTLCache[[]*entities.Entry]) {
	t.Helper()
	results := cache.New[[]*entities.Entry]("search", 5*time.Minute)
	engine := search.NewEngine(search.StrategySmart, 0)
	service := NewSearchService(repo, results, engine, throttleWindow, nil, zap.NewNop())
	return service, results
}

func TestSearchService_EmptyQueryShortCircuits(t *testing.T) {
	// Arrange
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	// Act
	results, err := service.Search(context.Background(), "user123", "   ", nil)

	// Assert: no repository call, no cache traffic, empty result
	assert.NoError(t, err)
	assert.Empty(t, results)
	repo.AssertNotCalled(t, "FetchByOwner")
}

func TestSearchService_MoodOnlySearchStillRuns(t *testing.T) {
	// Arrange: empty text plus a mood filter is a real query
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	happy := fixtures.NewEntryBuilder().WithTitle("good day").WithMood(5).MustBuild()
	meh := fixtures.NewEntryBuilder().WithTitle("average day").WithMood(3).MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{happy, meh}, nil).Once()

	mood, _ := valueobjects.NewMoodRating(5)

	// Act
	results, err := service.Search(context.Background(), "user123", "", &mood)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "good day", results[0].Title())
}

func TestSearchService_CachesResultsByNormalizedQuery(t *testing.T) {
	// Arrange
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	match := fixtures.NewEntryBuilder().WithTitle("paris trip").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{match}, nil).Once()

	// Act: the same query in different casing hits the same cache slot
	first, err1 := service.Search(context.Background(), "user123", "Paris", nil)
	second, err2 := service.Search(context.Background(), "user123", "  paris ", nil)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "FetchByOwner", 1)
}

func TestSearchService_ThrottledCallReplaysLastResult(t *testing.T) {
	// Arrange
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, time.Minute)

	match := fixtures.NewEntryBuilder().WithTitle("rainy walk").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{match}, nil).Once()

	first, err := service.Search(context.Background(), "user123", "rain", nil)
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	// Act: inside the throttle window even a different query replays
	replayed, err := service.Search(context.Background(), "user123", "sunshine", nil)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, first, replayed)
	repo.AssertNumberOfCalls(t, "FetchByOwner", 1)
}

func TestSearchService_ThrottledCallWithNoHistoryReturnsEmpty(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, time.Minute)

	// Seed the throttle without a completed search
	_, _ = service.Search(context.Background(), "user123", "", nil) // short-circuits, no throttle touch
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return(nil, errors.New("store down")).Once()
	_, err := service.Search(context.Background(), "user123", "rain", nil)
	assert.Error(t, err)

	results, err := service.Search(context.Background(), "user123", "rain", nil)

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_CacheHitSkipsRepository(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	results := cache.New[[]*entities.Entry]("search", 5*time.Minute)
	engine := search.NewEngine(search.StrategySmart, 0)
	service := NewSearchService(repo, results, engine, 0, nil, zap.NewNop())

	cached := []*entities.Entry{fixtures.NewEntryBuilder().WithTitle("paris trip").MustBuild()}
	results.Put(cache.SearchKey("user123", "paris", nil), cached)

	got, err := service.Search(context.Background(), "user123", "paris", nil)

	assert.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "FetchByOwner")
}

func TestSearchService_SuggestRequiresTwoCharacters(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	suggestions, err := service.Suggest(context.Background(), "user123", "p")

	assert.NoError(t, err)
	assert.Nil(t, suggestions)
	repo.AssertNotCalled(t, "FetchByOwner")
}

func TestSearchService_SuggestUsesBoundedWindow(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	match := fixtures.NewEntryBuilder().WithTitle("Paris trip").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSuggestWindow).
		Return([]*entities.Entry{match}, nil).Once()

	suggestions, err := service.Suggest(context.Background(), "user123", "par")

	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris trip"}, suggestions)
}

func TestSearchService_DebouncedSearchRunsOnceWithFinalText(t *testing.T) {
	// Arrange
	repo := new(mocks.MockEntryRepository)
	results := cache.New[[]*entities.Entry]("search", 5*time.Minute)
	engine := search.NewEngine(search.StrategySmart, 0)
	service := NewSearchService(repo, results, engine, 0, nil, zap.NewNop(),
		WithDebounceQuiet(60*time.Millisecond))

	match := fixtures.NewEntryBuilder().WithTitle("paris trip").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{match}, nil)

	delivered := make(chan []*entities.Entry, 4)
	deliver := func(got []*entities.Entry, err error) {
		assert.NoError(t, err)
		delivered <- got
	}

	// Act: a typing burst, then silence
	for _, text := range []string{"p", "pa", "par", "paris"} {
		service.DebouncedSearch(context.Background(), "user123", text, nil, deliver)
		time.Sleep(15 * time.Millisecond)
	}

	// Assert: exactly one delivery, for the final text
	select {
	case got := <-delivered:
		assert.Len(t, got, 1)
		assert.Equal(t, "paris trip", got[0].Title())
	case <-time.After(time.Second):
		t.Fatal("debounced search never delivered")
	}

	select {
	case <-delivered:
		t.Fatal("debounced search delivered more than once")
	case <-time.After(150 * time.Millisecond):
	}
	repo.AssertNumberOfCalls(t, "FetchByOwner", 1)
}

func TestSearchService_ResetClearsThrottleState(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, time.Minute)

	match := fixtures.NewEntryBuilder().WithTitle("rainy walk").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{match}, nil).Twice()

	_, err := service.Search(context.Background(), "user123", "rain", nil)
	assert.NoError(t, err)

	service.Reset("user123")

	// After reset the next search runs for real instead of replaying
	_, err = service.Search(context.Background(), "user123", "walk", nil)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FetchByOwner", 2)
}

func TestSearchService_ApplyTuningChangesWindowAndThrottle(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	match := fixtures.NewEntryBuilder().WithTitle("paris trip").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", 25).
		Return([]*entities.Entry{match}, nil).Once()

	// Shrink the candidate window and arm the throttle on the live service
	service.ApplyTuning(25, 0, 0, time.Minute)

	results, err := service.Search(context.Background(), "user123", "paris", nil)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	// The new throttle window suppresses the follow-up query entirely
	replayed, err := service.Search(context.Background(), "user123", "london", nil)
	assert.NoError(t, err)
	assert.Equal(t, results, replayed)
	repo.AssertNumberOfCalls(t, "FetchByOwner", 1)
}

func TestSearchService_ApplyTuningZeroValuesKeepSettings(t *testing.T) {
	repo := new(mocks.MockEntryRepository)
	service, _ := newSearchService(t, repo, 0)

	match := fixtures.NewEntryBuilder().WithTitle("paris trip").MustBuild()
	repo.On("FetchByOwner", context.Background(), "user123", DefaultSearchWindow).
		Return([]*entities.Entry{match}, nil).Once()

	service.ApplyTuning(0, 0, 0, 0)

	results, err := service.Search(context.Background(), "user123", "paris", nil)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
}
