package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the statuses that occupy a service's calendar.
// Only these participate in conflict detection.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// ParseBookingStatus converts a raw string into a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return BookingStatus(s), nil
	default:
		return "", apperrors.Validation(fmt.Sprintf("invalid booking status: %s", s))
	}
}

// IsTerminal reports whether the status permits no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// transitionPolicy says who may take a transition edge
type transitionPolicy int

const (
	adminOnly transitionPolicy = iota
	ownerOrAdmin
)

// statusTransitions is the full transition table. Edges absent from the map
// are invalid for everyone; terminal statuses have no outgoing edges.
var statusTransitions = map[BookingStatus]map[BookingStatus]transitionPolicy{
	BookingStatusPending: {
		BookingStatusConfirmed: adminOnly,
		BookingStatusCancelled: ownerOrAdmin,
		BookingStatusCompleted: adminOnly,
	},
	BookingStatusConfirmed: {
		BookingStatusCancelled: ownerOrAdmin,
		BookingStatusCompleted: adminOnly,
	},
}

// CanTransition checks whether the actor may move a booking from one status to
// another. Non-admin owners may only ever request cancellation; that check
// runs before the table lookup, so an owner asking for an admin-only target
// gets an authorization failure rather than a validation one.
func CanTransition(from, to BookingStatus, isAdmin bool) error {
	if !isAdmin && to != BookingStatusCancelled {
		return apperrors.Forbidden(fmt.Sprintf("only administrators can set a booking to %s", to))
	}

	policy, ok := statusTransitions[from][to]
	if !ok {
		return apperrors.Validation(fmt.Sprintf("cannot transition booking from %s to %s", from, to))
	}

	if policy == adminOnly && !isAdmin {
		return apperrors.Forbidden(fmt.Sprintf("only administrators can set a booking to %s", to))
	}

	return nil
}

// Booking represents a reservation of a service for a time slot
type Booking struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	ServiceID uuid.UUID     `json:"service_id" db:"service_id"`
	StartTime time.Time     `json:"start_time" db:"start_time"`
	EndTime   time.Time     `json:"end_time" db:"end_time"`
	Status    BookingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Slot returns the booking's time interval
func (b *Booking) Slot() TimeSlot {
	return TimeSlot{Start: b.StartTime, End: b.EndTime}
}

// IsOwnedBy checks whether the booking belongs to the given user
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// HasStarted reports whether the booking's slot has begun as of now
func (b *Booking) HasStarted(now time.Time) bool {
	return !b.StartTime.After(now)
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
}

// UpdateBookingRequest represents a partial booking update.
// At least one of the fields must be present.
type UpdateBookingRequest struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	Status    *string    `json:"status,omitempty" binding:"omitempty,bookingstatus"`
}

// Validate validates the update booking request
func (r *UpdateBookingRequest) Validate() error {
	if r.StartTime == nil && r.Status == nil {
		return apperrors.Validation("at least one of start_time or status must be provided")
	}
	return nil
}

// BookingFilter narrows booking list queries
type BookingFilter struct {
	UserID *uuid.UUID
	Status *BookingStatus
	From   *time.Time
	To     *time.Time
}

// BookingStatusValidator is registered with gin's binding engine under the
// "bookingstatus" tag
func BookingStatusValidator(fl validator.FieldLevel) bool {
	_, err := ParseBookingStatus(fl.Field().String())
	return err == nil
}
