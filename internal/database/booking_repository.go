package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// BookingRepository handles database operations for the bookings table.
// Overlap safety is enforced by the bookings_no_overlap exclusion constraint;
// the repository translates violations of it into typed conflict errors so
// two writers racing for the same slot can never both commit.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// activeStatusStrings returns the statuses that occupy a service's calendar,
// in the form pq.Array understands
func activeStatusStrings() []string {
	statuses := make([]string, len(models.ActiveBookingStatuses))
	for i, s := range models.ActiveBookingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// Create inserts a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, service_id, start_time, end_time, status
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at, updated_at
	`

	// Generate ID if not provided
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.UserID, booking.ServiceID,
		booking.StartTime, booking.EndTime, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.Conflict("requested time conflicts with an existing booking")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("booking store")
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, user_id, service_id, start_time, end_time, status,
			   created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking, err := r.scanBooking(r.db.QueryRow(query, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Booking")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("booking store")
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return booking, nil
}

// FindConflicting returns active bookings of a service whose half-open
// interval intersects the given slot, ordered by start time. excludeID, when
// set, leaves the named booking out so reschedules do not collide with
// themselves.
func (r *BookingRepository) FindConflicting(serviceID uuid.UUID, slot models.TimeSlot, excludeID *uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, service_id, start_time, end_time, status,
			   created_at, updated_at
		FROM bookings
		WHERE service_id = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
	`
	args := []interface{}{serviceID, pq.Array(activeStatusStrings()), slot.End, slot.Start}

	if excludeID != nil {
		query += " AND id <> $5"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_time"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("booking store")
		}
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// List retrieves bookings matching the filter, most recent start first
func (r *BookingRepository) List(filter models.BookingFilter) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, service_id, start_time, end_time, status,
			   created_at, updated_at
		FROM bookings
	`

	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_time <= $%d", argCount))
		args = append(args, *filter.To)
		argCount++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("booking store")
		}
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListUpcoming retrieves a user's active bookings starting inside the given
// window, soonest first
func (r *BookingRepository) ListUpcoming(userID uuid.UUID, from, until time.Time) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, service_id, start_time, end_time, status,
			   created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		  AND status = ANY($2)
		  AND start_time >= $3
		  AND start_time <= $4
		ORDER BY start_time
	`

	rows, err := r.db.Query(query, userID, pq.Array(activeStatusStrings()), from, until)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("booking store")
		}
		return nil, fmt.Errorf("failed to list upcoming bookings: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// Update persists the booking's status and schedule in one statement, guarded
// by the status the caller last read. Zero rows updated means another writer
// transitioned the booking in between, which surfaces as a conflict.
func (r *BookingRepository) Update(booking *models.Booking, expectedStatus models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		booking.ID, booking.Status, booking.StartTime, booking.EndTime,
		expectedStatus,
	).Scan(&booking.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Conflict("booking was modified concurrently, please retry")
		}
		if isExclusionViolation(err) {
			return apperrors.Conflict("requested time conflicts with an existing booking")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("booking store")
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

// Delete removes a booking permanently
func (r *BookingRepository) Delete(bookingID uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(query, bookingID)
	if err != nil {
		if isConnectionFailure(err) {
			return apperrors.Unavailable("booking store")
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return apperrors.NotFound("Booking")
	}

	return nil
}

// CountActiveByServiceID returns how many active bookings reference a service
func (r *BookingRepository) CountActiveByServiceID(serviceID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE service_id = $1
		  AND status = ANY($2)
	`

	var count int
	err := r.db.QueryRow(query, serviceID, pq.Array(activeStatusStrings())).Scan(&count)
	if err != nil {
		if isConnectionFailure(err) {
			return 0, apperrors.Unavailable("booking store")
		}
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

// scanBooking scans a single booking
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}

	err := row.Scan(
		&booking.ID, &booking.UserID, &booking.ServiceID,
		&booking.StartTime, &booking.EndTime, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		var booking models.Booking

		err := rows.Scan(
			&booking.ID, &booking.UserID, &booking.ServiceID,
			&booking.StartTime, &booking.EndTime, &booking.Status,
			&booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// scanner interface for QueryRow and Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
