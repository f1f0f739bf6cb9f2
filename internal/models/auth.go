package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenPairResponse is returned by login and refresh
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshTokenRequest represents the request to rotate tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RevokedToken is a denylisted JWT, identified by its jti claim.
// Rows are purged once the underlying token would have expired anyway.
type RevokedToken struct {
	JTI       uuid.UUID `json:"jti" db:"jti"`
	RevokedAt time.Time `json:"revoked_at" db:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// UserSession is a login audit record with the parsed client device info
type UserSession struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	IPAddress  *string   `json:"ip_address,omitempty" db:"ip_address"`
	DeviceType *string   `json:"device_type,omitempty" db:"device_type"`
	OS         *string   `json:"os,omitempty" db:"os"`
	Browser    *string   `json:"browser,omitempty" db:"browser"`
	LoggedInAt time.Time `json:"logged_in_at" db:"logged_in_at"`
}
