package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/infrastructure/cache"
	"github.com/wilson12358/daybook/tests/fixtures"
	"github.com/wilson12358/daybook/tests/mocks"
)

type entryServiceFixture struct {
	service   *EntryService
	repo      *mocks.MockEntryRepository
	objects   *mocks.MockObjectStore
	publisher *mocks.MockEventPublisher
	lists     *cache.TTLCache[[]*entities.Entry]
	search    *cache.TTLCache[[]*entities.Entry]
}

func newEntryServiceFixture(t *testing.T) *entryServiceFixture {
	t.Helper()

	repo := new(mocks.MockEntryRepository)
	objects := new(mocks.MockObjectStore)
	publisher := new(mocks.MockEventPublisher)

	lists := cache.New[[]*entities.Entry]("lists", time.Minute)
	search := cache.New[[]*entities.Entry]("search", time.Minute)
	tags := cache.New[[]string]("recent-tags", time.Minute)

	hub := cache.NewHub(zap.NewNop())
	hub.Register(lists)
	hub.Register(search)
	hub.Register(tags)

	return &entryServiceFixture{
		service:   NewEntryService(repo, objects, publisher, hub, lists, tags, nil, zap.NewNop()),
		repo:      repo,
		objects:   objects,
		publisher: publisher,
		lists:     lists,
		search:    search,
	}
}

func TestEntryService_ListEntriesCachesFirstFetch(t *testing.T) {
	// Arrange
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	stored := []*entities.Entry{fixtures.NewEntryBuilder().MustBuild()}
	f.repo.On("FetchByOwner", ctx, "user123", 20).Return(stored, nil).Once()

	// Act
	first, err1 := f.service.ListEntries(ctx, "user123", 20)
	second, err2 := f.service.ListEntries(ctx, "user123", 20)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, stored, first)
	assert.Equal(t, stored, second)
	f.repo.AssertNumberOfCalls(t, "FetchByOwner", 1)
}

func TestEntryService_DifferentLimitsAreDifferentQueries(t *testing.T) {
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	f.repo.On("FetchByOwner", ctx, "user123", 20).Return([]*entities.Entry{}, nil).Once()
	f.repo.On("FetchByOwner", ctx, "user123", 50).Return([]*entities.Entry{}, nil).Once()

	_, _ = f.service.ListEntries(ctx, "user123", 20)
	_, _ = f.service.ListEntries(ctx, "user123", 50)

	f.repo.AssertExpectations(t)
}

func TestEntryService_EmptyOwnerRejected(t *testing.T) {
	f := newEntryServiceFixture(t)

	_, err := f.service.ListEntries(context.Background(), "", 20)

	assert.Error(t, err)
	f.repo.AssertNotCalled(t, "FetchByOwner")
}

func TestEntryService_FetchFailureWithNoStaleCopyPropagates(t *testing.T) {
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	f.repo.On("FetchByOwner", ctx, "user123", 50).Return(nil, errors.New("store down")).Once()

	_, err := f.service.ListEntries(ctx, "user123", 50)

	assert.Error(t, err)
}

func TestEntryService_ServesStaleWhenFetchFailsAfterExpiry(t *testing.T) {
	// Arrange: expired entry in cache, store failing
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	lists := cache.New[[]*entities.Entry]("lists", time.Minute, cache.WithClock[[]*entities.Entry](clock))
	tags := cache.New[[]string]("recent-tags", time.Minute)
	hub := cache.NewHub(zap.NewNop())
	hub.Register(lists)

	repo := new(mocks.MockEntryRepository)
	service := NewEntryService(repo, new(mocks.MockObjectStore), new(mocks.MockEventPublisher), hub, lists, tags, nil, zap.NewNop())

	stale := []*entities.Entry{fixtures.NewEntryBuilder().WithTitle("stale but shown").MustBuild()}
	lists.Put(cache.ListKey("user123", 20), stale)
	now = now.Add(time.Hour)

	ctx := context.Background()
	repo.On("FetchByOwner", ctx, "user123", 20).Return(nil, errors.New("store down")).Once()

	// Act
	got, err := service.ListEntries(ctx, "user123", 20)

	// Assert: the expired entry is served instead of the error
	assert.NoError(t, err)
	assert.Equal(t, stale, got)
}

func TestEntryService_CreatePurgesOwnerCaches(t *testing.T) {
	// Arrange
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	f.lists.Put(cache.ListKey("user123", 20), []*entities.Entry{})
	f.search.Put(cache.SearchKey("user123", "paris", nil), []*entities.Entry{})

	f.repo.On("Create", ctx, mock.AnythingOfType("*entities.Entry")).Return("id", nil).Once()
	f.publisher.On("PublishBatch", ctx, mock.Anything).Return(nil)

	// Act
	_, err := f.service.CreateEntry(ctx, "user123", validCreateParams())

	// Assert: both caches lost the owner's entries, search keys included
	assert.NoError(t, err)
	_, ok := f.lists.LookupStale(cache.ListKey("user123", 20))
	assert.False(t, ok)
	_, ok = f.search.LookupStale(cache.SearchKey("user123", "paris", nil))
	assert.False(t, ok)
}

func TestEntryService_FailedCreateLeavesCachesIntact(t *testing.T) {
	// Arrange
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	f.lists.Put(cache.ListKey("user123", 20), []*entities.Entry{})
	f.repo.On("Create", ctx, mock.AnythingOfType("*entities.Entry")).Return("", errors.New("write failed")).Once()

	// Act
	_, err := f.service.CreateEntry(ctx, "user123", validCreateParams())

	// Assert: no purge happened for the failed mutation
	assert.Error(t, err)
	_, ok := f.lists.Lookup(cache.ListKey("user123", 20))
	assert.True(t, ok)
	f.publisher.AssertNotCalled(t, "PublishBatch")
}

func TestEntryService_DeleteCascadesAttachments(t *testing.T) {
	// Arrange
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	deleted := fixtures.NewEntryBuilder().
		WithOwnerID("user123").
		WithAttachmentRefs("photos/a.jpg", "photos/b.jpg").
		MustBuild()

	f.repo.On("Delete", ctx, "user123", deleted.ID().String()).Return(deleted, nil).Once()
	f.objects.On("Delete", ctx, "photos/a.jpg").Return(nil).Once()
	f.objects.On("Delete", ctx, "photos/b.jpg").Return(nil).Once()
	f.publisher.On("PublishBatch", ctx, mock.Anything).Return(nil)

	// Act
	got, err := f.service.DeleteEntry(ctx, "user123", deleted.ID().String())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, deleted, got)
	f.objects.AssertExpectations(t)
}

func TestEntryService_DeleteSurvivesAttachmentFailure(t *testing.T) {
	// Arrange: the attachment delete fails but the operation still succeeds
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	deleted := fixtures.NewEntryBuilder().
		WithOwnerID("user123").
		WithAttachmentRefs("photos/gone.jpg").
		MustBuild()

	f.repo.On("Delete", ctx, "user123", deleted.ID().String()).Return(deleted, nil).Once()
	f.objects.On("Delete", ctx, "photos/gone.jpg").Return(errors.New("bucket unreachable")).Once()
	f.publisher.On("PublishBatch", ctx, mock.Anything).Return(nil)

	// Act
	_, err := f.service.DeleteEntry(ctx, "user123", deleted.ID().String())

	// Assert
	assert.NoError(t, err)
}

func TestEntryService_BatchDeleteReportsFailuresAndPurgesOnce(t *testing.T) {
	// Arrange
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	kept := fixtures.NewEntryBuilder().WithOwnerID("user123").MustBuild()

	f.repo.On("Delete", ctx, "user123", kept.ID().String()).Return(kept, nil).Once()
	f.repo.On("Delete", ctx, "user123", "missing-id").Return(nil, errors.New("not found")).Once()
	f.publisher.On("PublishBatch", ctx, mock.Anything).Return(nil)

	// Act
	deleted, failed, err := f.service.DeleteEntries(ctx, "user123", []string{kept.ID().String(), "missing-id"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []string{kept.ID().String()}, deleted)
	assert.Equal(t, []string{"missing-id"}, failed)
}

func TestEntryService_RecentTagsMostRecentFirstDistinct(t *testing.T) {
	// Arrange: entries arrive newest first from the repository
	f := newEntryServiceFixture(t)
	ctx := context.Background()
	newest := fixtures.NewEntryBuilder().WithTags("travel", "food").MustBuild()
	older := fixtures.NewEntryBuilder().WithTags("food", "garden").MustBuild()
	f.repo.On("FetchByOwner", ctx, "user123", DefaultRecentTagWindow).
		Return([]*entities.Entry{newest, older}, nil).Once()

	// Act
	tags, err := f.service.RecentTags(ctx, "user123", 10)

	// Assert: distinct, first-seen order across the newest-first window
	assert.NoError(t, err)
	assert.Equal(t, []string{"travel", "food", "garden"}, tags)
}

func validCreateParams() CreateEntryParams {
	entry := fixtures.NewEntryBuilder().MustBuild()
	return CreateEntryParams{
		Title:      entry.Title(),
		Body:       entry.Body(),
		OccurredAt: entry.OccurredAt(),
		Mood:       entry.Mood(),
	}
}
