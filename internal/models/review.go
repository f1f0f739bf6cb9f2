package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// Review represents feedback left for a completed booking
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookingID uuid.UUID `json:"booking_id" db:"booking_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateReviewRequest represents the request to review a booking
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string   `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// Validate validates the create review request
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.Validation("rating must be between 1 and 5")
	}
	return nil
}

// UpdateReviewRequest represents a partial review update
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// Validate validates the update review request
func (r *UpdateReviewRequest) Validate() error {
	if r.Rating == nil && r.Comment == nil {
		return apperrors.Validation("at least one of rating or comment must be provided")
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return apperrors.Validation("rating must be between 1 and 5")
	}
	return nil
}
