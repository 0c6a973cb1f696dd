package events

import (
	"time"

	"github.com/wilson12358/daybook/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetOwnerID() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	OwnerID     string    `json:"owner_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetOwnerID() string      { return e.OwnerID }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// EntryCreated is raised when a new diary entry is created
type EntryCreated struct {
	BaseEvent
	EntryID    valueobjects.EntryID `json:"entry_id"`
	OccurredAt time.Time            `json:"occurred_at"`
	Tags       []string             `json:"tags"`
}

// NewEntryCreated creates an EntryCreated event
func NewEntryCreated(entryID valueobjects.EntryID, ownerID string, occurredAt time.Time, tags []string, timestamp time.Time) EntryCreated {
	return EntryCreated{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.created",
			OwnerID:     ownerID,
			Timestamp:   timestamp,
		},
		EntryID:    entryID,
		OccurredAt: occurredAt,
		Tags:       tags,
	}
}

// EntryUpdated is raised when an entry's content or metadata changes
type EntryUpdated struct {
	BaseEvent
	EntryID valueobjects.EntryID `json:"entry_id"`
}

// NewEntryUpdated creates an EntryUpdated event
func NewEntryUpdated(entryID valueobjects.EntryID, ownerID string, timestamp time.Time) EntryUpdated {
	return EntryUpdated{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.updated",
			OwnerID:     ownerID,
			Timestamp:   timestamp,
		},
		EntryID: entryID,
	}
}

// EntryDeleted is raised when an entry is deleted, carrying the attachment
// references so downstream cleanup can verify the cascade completed
type EntryDeleted struct {
	BaseEvent
	EntryID        valueobjects.EntryID `json:"entry_id"`
	AttachmentRefs []string             `json:"attachment_refs,omitempty"`
}

// NewEntryDeleted creates an EntryDeleted event
func NewEntryDeleted(entryID valueobjects.EntryID, ownerID string, attachmentRefs []string, timestamp time.Time) EntryDeleted {
	return EntryDeleted{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.deleted",
			OwnerID:     ownerID,
			Timestamp:   timestamp,
		},
		EntryID:        entryID,
		AttachmentRefs: attachmentRefs,
	}
}
