package ports

import (
	"context"
	"time"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/events"
)

// EntryRepository is the record store client contract. Implementations issue
// range and filter queries against the backing document store and return
// typed entries; they know nothing about caching.
type EntryRepository interface {
	// FetchByOwner returns up to limit entries for the owner, ordered by
	// occurredAt descending.
	FetchByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Entry, error)

	// FetchByOwnerAndDateRange returns the owner's entries whose occurredAt
	// falls in [start, end), ordered by occurredAt descending.
	FetchByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*entities.Entry, error)

	// Create persists a new entry and returns its id.
	Create(ctx context.Context, entry *entities.Entry) (string, error)

	// Update replaces an existing entry.
	Update(ctx context.Context, entry *entities.Entry) error

	// Delete removes an entry and returns the deleted record so the caller
	// can cascade-delete its attachments.
	Delete(ctx context.Context, ownerID, entryID string) (*entities.Entry, error)

	// Count returns the owner's total entry count.
	Count(ctx context.Context, ownerID string) (int, error)
}

// ObjectStore is the attachment store contract. Upload and download are
// handled elsewhere in the application; the entry lifecycle only needs Delete
// for the cascade after an entry is removed.
type ObjectStore interface {
	Delete(ctx context.Context, ref string) error
}

// EventPublisher publishes domain events after successful mutations
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}
