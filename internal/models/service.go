package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// Service represents a bookable offering in the catalog
type Service struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Price           float64   `json:"price" db:"price"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// CreateServiceRequest represents the request to create a service
type CreateServiceRequest struct {
	Title           string  `json:"title" binding:"required,min=1,max=200"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"min=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=1,max=1440"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// Validate validates the create service request
func (r *CreateServiceRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title must not be blank")
	}
	if r.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	if r.DurationMinutes < 1 || r.DurationMinutes > 1440 {
		return apperrors.Validation("duration_minutes must be between 1 and 1440")
	}
	return nil
}

// UpdateServiceRequest represents a partial service update
type UpdateServiceRequest struct {
	Title           *string  `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" binding:"omitempty,min=1,max=1440"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

// Validate validates the update service request
func (r *UpdateServiceRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.Price == nil && r.DurationMinutes == nil && r.IsActive == nil {
		return apperrors.Validation("at least one field must be provided")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperrors.Validation("title must not be blank")
	}
	if r.Price != nil && *r.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	if r.DurationMinutes != nil && (*r.DurationMinutes < 1 || *r.DurationMinutes > 1440) {
		return apperrors.Validation("duration_minutes must be between 1 and 1440")
	}
	return nil
}

// ServiceFilter narrows catalog list queries
type ServiceFilter struct {
	Query    string
	PriceMin *float64
	PriceMax *float64
	Active   *bool
}
