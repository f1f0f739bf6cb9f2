package models

import (
	"time"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// TimeSlot represents a half-open time interval [Start, End).
// A booking ending at 10:00 does not collide with one starting at 10:00.
type TimeSlot struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// NewTimeSlot builds a slot from a start time and a duration in minutes
func NewTimeSlot(start time.Time, durationMinutes int) TimeSlot {
	return TimeSlot{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

// Validate checks that the slot is well formed
func (s TimeSlot) Validate() error {
	if !s.Start.Before(s.End) {
		return apperrors.Validation("start_time must be before end_time")
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End) && s.End.After(other.Start)
}

// Contains reports whether t falls inside the slot
func (s TimeSlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Duration returns the length of the slot
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
