// Package fixtures provides builders for test data.
package fixtures

import (
	"time"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
)

// EntryBuilder builds test entries with sensible defaults
type EntryBuilder struct {
	ownerID    string
	title      string
	body       string
	occurredAt time.Time
	tags       []string
	mood       int
	refs       []string
}

// NewEntryBuilder creates a builder with default values
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		ownerID:    "user123",
		title:      "A day to remember",
		body:       "Walked along the river and had coffee.",
		occurredAt: time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC),
		mood:       3,
	}
}

// WithOwnerID sets the owner
func (b *EntryBuilder) WithOwnerID(ownerID string) *EntryBuilder {
	b.ownerID = ownerID
	return b
}

// WithTitle sets the title
func (b *EntryBuilder) WithTitle(title string) *EntryBuilder {
	b.title = title
	return b
}

// WithBody sets the body
func (b *EntryBuilder) WithBody(body string) *EntryBuilder {
	b.body = body
	return b
}

// WithOccurredAt sets the occurrence time
func (b *EntryBuilder) WithOccurredAt(t time.Time) *EntryBuilder {
	b.occurredAt = t
	return b
}

// WithTags sets the tags
func (b *EntryBuilder) WithTags(tags ...string) *EntryBuilder {
	b.tags = tags
	return b
}

// WithMood sets the mood rating
func (b *EntryBuilder) WithMood(mood int) *EntryBuilder {
	b.mood = mood
	return b
}

// WithAttachmentRefs sets the attachment refs
func (b *EntryBuilder) WithAttachmentRefs(refs ...string) *EntryBuilder {
	b.refs = refs
	return b
}

// Build creates the entry, returning any validation error
func (b *EntryBuilder) Build() (*entities.Entry, error) {
	mood, err := valueobjects.NewMoodRating(b.mood)
	if err != nil {
		return nil, err
	}
	entry, err := entities.NewEntry(b.ownerID, b.title, b.body, b.occurredAt, b.tags, mood)
	if err != nil {
		return nil, err
	}
	for _, ref := range b.refs {
		if err := entry.AttachRef(ref); err != nil {
			return nil, err
		}
	}
	// Builders produce settled entries; recorded construction events are
	// irrelevant to most tests
	entry.Events()
	return entry, nil
}

// MustBuild creates the entry and panics on error
func (b *EntryBuilder) MustBuild() *entities.Entry {
	entry, err := b.Build()
	if err != nil {
		panic(err)
	}
	return entry
}
