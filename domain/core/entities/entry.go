package entities

import (
	"time"

	"github.com/wilson12358/daybook/domain/core/valueobjects"
	"github.com/wilson12358/daybook/domain/events"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
)

// Entry is the unit of storage and search: one diary entry.
//
// id and ownerID are immutable once assigned. occurredAt is the user-assigned
// moment the entry describes; createdAt is when it was written down. The two
// are independent: an entry written today may describe yesterday.
type Entry struct {
	id             valueobjects.EntryID
	ownerID        string
	occurredAt     time.Time
	createdAt      time.Time
	updatedAt      time.Time
	title          string
	body           string
	tags           valueobjects.TagSet
	mood           valueobjects.MoodRating
	attachmentRefs []string
	location       *Location
	weather        *Weather

	// Domain events recorded during this aggregate's lifetime
	events []events.DomainEvent
}

// Location is an optional place snapshot captured when the entry was written
type Location struct {
	Place     string  `json:"place"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Weather is an optional weather snapshot captured when the entry was written
type Weather struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
}

// NewEntry creates a new entry with business rule validation
func NewEntry(ownerID, title, body string, occurredAt time.Time, tags []string, mood valueobjects.MoodRating) (*Entry, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID cannot be empty")
	}
	if title == "" && body == "" {
		return nil, pkgerrors.NewValidationError("entry needs a title or a body")
	}
	if occurredAt.IsZero() {
		return nil, pkgerrors.NewValidationError("occurredAt is required")
	}

	now := time.Now()
	tagSet := valueobjects.NewTagSet(tags)

	entry := &Entry{
		id:         valueobjects.NewEntryID(),
		ownerID:    ownerID,
		occurredAt: occurredAt,
		createdAt:  now,
		updatedAt:  now,
		title:      title,
		body:       body,
		tags:       tagSet,
		mood:       mood,
	}

	entry.addEvent(events.NewEntryCreated(entry.id, ownerID, occurredAt, tagSet.ToSlice(), now))

	return entry, nil
}

// ReconstructEntry rebuilds an entry from repository data with preserved
// timestamps. No events are recorded and no validation is re-run: the data
// already passed validation when it was first written.
func ReconstructEntry(
	id valueobjects.EntryID,
	ownerID string,
	title, body string,
	occurredAt, createdAt, updatedAt time.Time,
	tags []string,
	mood valueobjects.MoodRating,
	attachmentRefs []string,
	location *Location,
	weather *Weather,
) *Entry {
	return &Entry{
		id:             id,
		ownerID:        ownerID,
		occurredAt:     occurredAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		title:          title,
		body:           body,
		tags:           valueobjects.NewTagSet(tags),
		mood:           mood,
		attachmentRefs: attachmentRefs,
		location:       location,
		weather:        weather,
	}
}

// Accessors

func (e *Entry) ID() valueobjects.EntryID      { return e.id }
func (e *Entry) OwnerID() string               { return e.ownerID }
func (e *Entry) OccurredAt() time.Time         { return e.occurredAt }
func (e *Entry) CreatedAt() time.Time          { return e.createdAt }
func (e *Entry) UpdatedAt() time.Time          { return e.updatedAt }
func (e *Entry) Title() string                 { return e.title }
func (e *Entry) Body() string                  { return e.body }
func (e *Entry) Tags() valueobjects.TagSet     { return e.tags }
func (e *Entry) Mood() valueobjects.MoodRating { return e.mood }
func (e *Entry) Location() *Location           { return e.location }
func (e *Entry) Weather() *Weather             { return e.weather }

// AttachmentRefs returns a copy of the attachment references in order
func (e *Entry) AttachmentRefs() []string {
	out := make([]string, len(e.attachmentRefs))
	copy(out, e.attachmentRefs)
	return out
}

// UpdateContent replaces the entry's text and user-assigned date
func (e *Entry) UpdateContent(title, body string, occurredAt time.Time) error {
	if title == "" && body == "" {
		return pkgerrors.NewValidationError("entry needs a title or a body")
	}
	if occurredAt.IsZero() {
		return pkgerrors.NewValidationError("occurredAt is required")
	}

	e.title = title
	e.body = body
	e.occurredAt = occurredAt
	e.touch()
	return nil
}

// UpdateTags replaces the tag set, normalizing on the way in
func (e *Entry) UpdateTags(tags []string) {
	e.tags = valueobjects.NewTagSet(tags)
	e.touch()
}

// UpdateMood replaces the mood rating
func (e *Entry) UpdateMood(mood valueobjects.MoodRating) {
	e.mood = mood
	e.touch()
}

// AttachRef appends an attachment reference. The binary itself lives in the
// object store; the entry only carries the opaque reference.
func (e *Entry) AttachRef(ref string) error {
	if ref == "" {
		return pkgerrors.NewValidationError("attachment ref cannot be empty")
	}
	e.attachmentRefs = append(e.attachmentRefs, ref)
	e.touch()
	return nil
}

// SetLocation records an optional location snapshot
func (e *Entry) SetLocation(loc *Location) {
	e.location = loc
	e.touch()
}

// SetWeather records an optional weather snapshot
func (e *Entry) SetWeather(w *Weather) {
	e.weather = w
	e.touch()
}

// MarkDeleted records the deletion event for publication
func (e *Entry) MarkDeleted() {
	e.addEvent(events.NewEntryDeleted(e.id, e.ownerID, e.AttachmentRefs(), time.Now()))
}

// Events returns and clears the recorded domain events
func (e *Entry) Events() []events.DomainEvent {
	recorded := e.events
	e.events = nil
	return recorded
}

func (e *Entry) touch() {
	e.updatedAt = time.Now()
	e.addEvent(events.NewEntryUpdated(e.id, e.ownerID, e.updatedAt))
}

func (e *Entry) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}
