package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// RevokedTokenRepository handles the refresh token denylist
type RevokedTokenRepository struct {
	db DB
}

// NewRevokedTokenRepository creates a new RevokedTokenRepository
func NewRevokedTokenRepository(db DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke records a token ID as revoked until it would have expired anyway.
// Revoking the same token twice is a no-op.
func (r *RevokedTokenRepository) Revoke(jti uuid.UUID, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.db.Exec(query, jti, expiresAt)
	if err != nil {
		if isConnectionFailure(err) {
			return apperrors.Unavailable("token store")
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a token ID is on the denylist
func (r *RevokedTokenRepository) IsRevoked(jti uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`

	var revoked bool
	err := r.db.QueryRow(query, jti).Scan(&revoked)
	if err != nil {
		if isConnectionFailure(err) {
			return false, apperrors.Unavailable("token store")
		}
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return revoked, nil
}

// DeleteExpired purges denylist entries whose tokens have expired on their own
func (r *RevokedTokenRepository) DeleteExpired() (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < NOW()`

	result, err := r.db.Exec(query)
	if err != nil {
		if isConnectionFailure(err) {
			return 0, apperrors.Unavailable("token store")
		}
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
