package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// UserSessionRepository records login events for audit purposes
type UserSessionRepository struct {
	db DB
}

// NewUserSessionRepository creates a new UserSessionRepository
func NewUserSessionRepository(db DB) *UserSessionRepository {
	return &UserSessionRepository{db: db}
}

// Create records a login with whatever client details were available
func (r *UserSessionRepository) Create(userID uuid.UUID, ipAddress, deviceType, os, browser string) (*models.UserSession, error) {
	query := `
		INSERT INTO user_sessions (id, user_id, ip_address, device_type, os, browser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING logged_in_at
	`

	session := &models.UserSession{
		ID:     uuid.New(),
		UserID: userID,
	}

	err := r.db.QueryRow(
		query,
		session.ID,
		userID,
		nullString(ipAddress),
		nullString(deviceType),
		nullString(os),
		nullString(browser),
	).Scan(&session.LoggedInAt)

	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("session store")
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}
	if deviceType != "" {
		session.DeviceType = &deviceType
	}
	if os != "" {
		session.OS = &os
	}
	if browser != "" {
		session.Browser = &browser
	}

	return session, nil
}

// ListByUserID retrieves a user's login history, newest first
func (r *UserSessionRepository) ListByUserID(userID uuid.UUID) ([]models.UserSession, error) {
	query := `
		SELECT id, user_id, ip_address, device_type, os, browser, logged_in_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY logged_in_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("session store")
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.UserSession{}
	for rows.Next() {
		var session models.UserSession

		err := rows.Scan(
			&session.ID, &session.UserID,
			&session.IPAddress, &session.DeviceType, &session.OS, &session.Browser,
			&session.LoggedInAt,
		)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// CleanupOlderThan removes login records older than the given age
func (r *UserSessionRepository) CleanupOlderThan(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query := `DELETE FROM user_sessions WHERE logged_in_at < $1`

	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// nullString returns sql.NullString for empty strings
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
