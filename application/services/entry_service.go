package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wilson12358/daybook/application/ports"
	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/infrastructure/cache"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
	"github.com/wilson12358/daybook/pkg/observability"
)

// DefaultRecentTagWindow is how many of the owner's newest entries feed the
// recent-tag suggestion list
const DefaultRecentTagWindow = 100

// EntryService owns the list/calendar read paths and all entry mutations.
//
// Reads go through the short-TTL list cache with singleflight de-duplication,
// so overlapping misses for one key share a single record store fetch. When a
// fetch fails and a cache entry exists, even an expired one, the stale entry
// is served instead of the error. Mutations write through the repository and
// then drive the invalidation hub; the hub never runs for a failed mutation.
type EntryService struct {
	repo      ports.EntryRepository
	objects   ports.ObjectStore
	publisher ports.EventPublisher
	hub       *cache.Hub
	lists     *cache.TTLCache[[]*entities.Entry]
	tags      *cache.TTLCache[[]string]
	group     singleflight.Group
	tagWindow int
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewEntryService creates an entry service. The caches passed in must already
// be registered with the hub by the caller that constructed them.
func NewEntryService(
	repo ports.EntryRepository,
	objects ports.ObjectStore,
	publisher ports.EventPublisher,
	hub *cache.Hub,
	lists *cache.TTLCache[[]*entities.Entry],
	tags *cache.TTLCache[[]string],
	metrics *observability.Collector,
	logger *zap.Logger,
) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{
		repo:      repo,
		objects:   objects,
		publisher: publisher,
		hub:       hub,
		lists:     lists,
		tags:      tags,
		tagWindow: DefaultRecentTagWindow,
		metrics:   metrics,
		logger:    logger,
	}
}

// ListEntries returns up to limit of the owner's entries, newest first
func (s *EntryService) ListEntries(ctx context.Context, ownerID string, limit int) ([]*entities.Entry, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}
	if limit <= 0 {
		limit = 20
	}

	key := cache.ListKey(ownerID, limit)
	return s.readThrough(ctx, key, func(ctx context.Context) ([]*entities.Entry, error) {
		return s.repo.FetchByOwner(ctx, ownerID, limit)
	})
}

// EntriesOnDay returns the owner's entries for one calendar day
func (s *EntryService) EntriesOnDay(ctx context.Context, ownerID string, day time.Time) ([]*entities.Entry, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	key := cache.DayKey(ownerID, day)
	return s.readThrough(ctx, key, func(ctx context.Context) ([]*entities.Entry, error) {
		return s.repo.FetchByOwnerAndDateRange(ctx, ownerID, start, end)
	})
}

// EntriesInMonth returns the owner's entries for one calendar month
func (s *EntryService) EntriesInMonth(ctx context.Context, ownerID string, year int, month time.Month) ([]*entities.Entry, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	key := cache.MonthKey(ownerID, year, month)
	return s.readThrough(ctx, key, func(ctx context.Context) ([]*entities.Entry, error) {
		return s.repo.FetchByOwnerAndDateRange(ctx, ownerID, start, end)
	})
}

// RecentTags returns the distinct tags used across the owner's newest
// entries, most recently used first. It is a suggestion feature derived from
// a bounded window, not a persisted counter.
func (s *EntryService) RecentTags(ctx context.Context, ownerID string, max int) ([]string, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}
	if max <= 0 {
		max = MaxRecentTags
	}

	key := cache.RecentTagsKey(ownerID, s.tagWindow)
	if cached, ok := s.tags.Lookup(key); ok {
		return capTags(cached, max), nil
	}

	fetchStart := time.Now()
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		entries, err := s.repo.FetchByOwner(ctx, ownerID, s.tagWindow)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]struct{})
		var recent []string
		for _, entry := range entries {
			for _, tag := range entry.Tags().ToSlice() {
				if _, dup := seen[tag]; dup {
					continue
				}
				seen[tag] = struct{}{}
				recent = append(recent, tag)
			}
		}

		s.tags.PutIfNewer(key, recent, fetchStart)
		return recent, nil
	})
	if err != nil {
		if stale, ok := s.tags.LookupStale(key); ok {
			s.logger.Warn("serving stale recent tags after fetch failure",
				zap.String("ownerID", ownerID), zap.Error(err))
			return capTags(stale, max), nil
		}
		return nil, err
	}

	return capTags(v.([]string), max), nil
}

// MaxRecentTags caps the recent-tag suggestion list
const MaxRecentTags = 20

func capTags(tags []string, max int) []string {
	if len(tags) > max {
		return tags[:max]
	}
	return tags
}

// Count returns the owner's total entry count
func (s *EntryService) Count(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, pkgerrors.NewValidationError("ownerID is required")
	}
	return s.repo.Count(ctx, ownerID)
}

// CreateEntryParams carries everything needed to author an entry
type CreateEntryParams struct {
	Title          string
	Body           string
	OccurredAt     time.Time
	Tags           []string
	Mood           valueobjects.MoodRating
	AttachmentRefs []string
	Location       *entities.Location
	Weather        *entities.Weather
}

// CreateEntry persists a new entry, purges the owner's caches, and publishes
// the creation event
func (s *EntryService) CreateEntry(ctx context.Context, ownerID string, params CreateEntryParams) (*entities.Entry, error) {
	entry, err := entities.NewEntry(ownerID, params.Title, params.Body, params.OccurredAt, params.Tags, params.Mood)
	if err != nil {
		return nil, err
	}
	for _, ref := range params.AttachmentRefs {
		if err := entry.AttachRef(ref); err != nil {
			return nil, err
		}
	}
	if params.Location != nil {
		entry.SetLocation(params.Location)
	}
	if params.Weather != nil {
		entry.SetWeather(params.Weather)
	}

	if _, err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	// Invalidation runs only after the write succeeded; purging on a failed
	// mutation would throw away a still-valid cache for nothing.
	s.hub.OnEntryCreated(ownerID)
	s.publishEvents(ctx, entry)
	if s.metrics != nil {
		s.metrics.EntriesCreated.Inc()
	}

	return entry, nil
}

// UpdateEntry replaces an existing entry and purges the owner's caches
func (s *EntryService) UpdateEntry(ctx context.Context, entry *entities.Entry) error {
	if entry == nil {
		return pkgerrors.NewValidationError("entry is required")
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return err
	}

	s.hub.OnEntryUpdated(entry.OwnerID())
	s.publishEvents(ctx, entry)
	return nil
}

// DeleteEntry removes an entry, purges the owner's caches, and cascades the
// attachment deletes. The cascade is the service's job, not the cache's; a
// failed attachment delete is logged and does not fail the operation.
func (s *EntryService) DeleteEntry(ctx context.Context, ownerID, entryID string) (*entities.Entry, error) {
	deleted, err := s.repo.Delete(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}

	s.hub.OnEntryDeleted(ownerID)
	s.cascadeAttachments(ctx, deleted)

	deleted.MarkDeleted()
	s.publishEvents(ctx, deleted)
	if s.metrics != nil {
		s.metrics.EntriesDeleted.Inc()
	}

	return deleted, nil
}

// DeleteEntries is the batch variant of DeleteEntry. It returns the ids that
// were deleted and those that failed; one purge covers the whole batch.
func (s *EntryService) DeleteEntries(ctx context.Context, ownerID string, entryIDs []string) (deleted []string, failed []string, err error) {
	if ownerID == "" {
		return nil, nil, pkgerrors.NewValidationError("ownerID is required")
	}

	for _, id := range entryIDs {
		entry, delErr := s.repo.Delete(ctx, ownerID, id)
		if delErr != nil {
			s.logger.Warn("batch delete: entry failed",
				zap.String("entryID", id), zap.Error(delErr))
			failed = append(failed, id)
			continue
		}
		deleted = append(deleted, id)
		s.cascadeAttachments(ctx, entry)
		entry.MarkDeleted()
		s.publishEvents(ctx, entry)
	}

	if len(deleted) > 0 {
		s.hub.OnEntriesDeleted(ownerID, len(deleted))
		if s.metrics != nil {
			s.metrics.EntriesDeleted.Add(float64(len(deleted)))
		}
	}

	return deleted, failed, nil
}

// readThrough serves key from the list cache, fetching on a miss. Concurrent
// misses for the same key coalesce into one fetch. A failed fetch falls back
// to a stale entry when one exists; otherwise the typed failure propagates
// untouched. The service never retries: retry policy belongs to the caller.
func (s *EntryService) readThrough(ctx context.Context, key string, fetch func(context.Context) ([]*entities.Entry, error)) ([]*entities.Entry, error) {
	if payload, ok := s.lists.Lookup(key); ok {
		return payload, nil
	}

	fetchStart := time.Now()
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		entries, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		// PutIfNewer keeps a slow response from clobbering data a faster,
		// later fetch already cached for this key.
		s.lists.PutIfNewer(key, entries, fetchStart)
		return entries, nil
	})
	if err != nil {
		if stale, ok := s.lists.LookupStale(key); ok {
			s.logger.Warn("serving stale cache after fetch failure",
				zap.String("key", key), zap.Error(err))
			return stale, nil
		}
		return nil, err
	}

	return v.([]*entities.Entry), nil
}

func (s *EntryService) cascadeAttachments(ctx context.Context, entry *entities.Entry) {
	for _, ref := range entry.AttachmentRefs() {
		if err := s.objects.Delete(ctx, ref); err != nil {
			s.logger.Error("failed to delete attachment",
				zap.String("entryID", entry.ID().String()),
				zap.String("ref", ref),
				zap.Error(err),
			)
		}
	}
}

func (s *EntryService) publishEvents(ctx context.Context, entry *entities.Entry) {
	recorded := entry.Events()
	if len(recorded) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBatch(ctx, recorded); err != nil {
		s.logger.Error("failed to publish entry events",
			zap.String("entryID", entry.ID().String()),
			zap.Error(err),
		)
	}
}
