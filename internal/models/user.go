package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// UserRole represents the role of a user
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin checks whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.Validation("name must not be blank")
	}
	return nil
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest represents a partial profile update
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

// Validate validates the update user request
func (r *UpdateUserRequest) Validate() error {
	if r.Name == nil && r.Email == nil {
		return apperrors.Validation("at least one of name or email must be provided")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return apperrors.Validation("name must not be blank")
	}
	return nil
}
