package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review. The one-review-per-booking rule is the unique
// index on booking_id, so a second attempt surfaces as a conflict.
func (r *ReviewRepository) Create(review *models.Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		review.ID, review.BookingID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("booking has already been reviewed")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("review store")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(reviewID uuid.UUID) (*models.Review, error) {
	query := `
		SELECT id, booking_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	review, err := r.scanReview(r.db.QueryRow(query, reviewID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Review")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("review store")
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}

	return review, nil
}

// GetByBookingID retrieves the review attached to a booking
func (r *ReviewRepository) GetByBookingID(bookingID uuid.UUID) (*models.Review, error) {
	query := `
		SELECT id, booking_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE booking_id = $1
	`

	review, err := r.scanReview(r.db.QueryRow(query, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Review")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("review store")
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}

	return review, nil
}

// ListByServiceID retrieves all reviews left on a service's bookings,
// newest first
func (r *ReviewRepository) ListByServiceID(serviceID uuid.UUID) ([]models.Review, error) {
	query := `
		SELECT r.id, r.booking_id, r.user_id, r.rating, r.comment,
			   r.created_at, r.updated_at
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE b.service_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(query, serviceID)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("review store")
		}
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review

		err := rows.Scan(
			&review.ID, &review.BookingID, &review.UserID,
			&review.Rating, &review.Comment,
			&review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// Update persists the review's rating and comment
func (r *ReviewRepository) Update(review *models.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query, review.ID, review.Rating, review.Comment).Scan(&review.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("Review")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("review store")
		}
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

// Delete removes a review permanently
func (r *ReviewRepository) Delete(reviewID uuid.UUID) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.Exec(query, reviewID)
	if err != nil {
		if isConnectionFailure(err) {
			return apperrors.Unavailable("review store")
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return apperrors.NotFound("Review")
	}

	return nil
}

// scanReview scans a single review
func (r *ReviewRepository) scanReview(row scanner) (*models.Review, error) {
	review := &models.Review{}

	err := row.Scan(
		&review.ID, &review.BookingID, &review.UserID,
		&review.Rating, &review.Comment,
		&review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return review, nil
}
