package valueobjects

import (
	"fmt"
)

// MoodRating is a bounded 1..5 rating attached to an entry. It is the exact
// match filter dimension for search; it never participates in text matching.
type MoodRating struct {
	value int
}

const (
	MoodMin = 1
	MoodMax = 5
)

// NewMoodRating creates a validated mood rating
func NewMoodRating(value int) (MoodRating, error) {
	if value < MoodMin || value > MoodMax {
		return MoodRating{}, fmt.Errorf("mood rating must be between %d and %d, got %d", MoodMin, MoodMax, value)
	}
	return MoodRating{value: value}, nil
}

// Value returns the numeric rating
func (m MoodRating) Value() int {
	return m.value
}

// Equals checks if two ratings are equal
func (m MoodRating) Equals(other MoodRating) bool {
	return m.value == other.value
}

// MarshalJSON implements json.Marshaler
func (m MoodRating) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", m.value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *MoodRating) UnmarshalJSON(data []byte) error {
	var v int
	if _, err := fmt.Sscanf(string(data), "%d", &v); err != nil {
		return fmt.Errorf("mood rating must be an integer: %w", err)
	}
	rating, err := NewMoodRating(v)
	if err != nil {
		return err
	}
	*m = rating
	return nil
}
