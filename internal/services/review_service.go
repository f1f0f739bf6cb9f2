package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// ReviewService manages reviews left on completed bookings
type ReviewService struct {
	reviewRepo  *database.ReviewRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo *database.ReviewRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Create leaves a review on a booking. Only the booking's owner may
// review it, only after it completed, and only once.
func (s *ReviewService) Create(requesterID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	// 1. Validate the request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. The booking must exist, belong to the reviewer, and be completed
	booking, err := s.bookingRepo.GetByID(req.BookingID)
	if err != nil {
		return nil, s.wrap(err, "failed to create review")
	}
	if booking.UserID != requesterID {
		return nil, apperrors.Forbidden("you can only review your own bookings")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperrors.Validation("only completed bookings can be reviewed")
	}

	// 3. Persist (a second review for the booking surfaces as a conflict)
	review := &models.Review{
		BookingID: req.BookingID,
		UserID:    requesterID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, s.wrap(err, "failed to create review")
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"booking_id": review.BookingID,
		"rating":     review.Rating,
	}).Info("Review created")

	return review, nil
}

// GetByBooking fetches the review attached to a booking
func (s *ReviewService) GetByBooking(bookingID uuid.UUID) (*models.Review, error) {
	review, err := s.reviewRepo.GetByBookingID(bookingID)
	if err != nil {
		return nil, s.wrap(err, "failed to fetch review")
	}
	return review, nil
}

// ListByService returns all reviews left on a service's bookings
func (s *ReviewService) ListByService(serviceID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.reviewRepo.ListByServiceID(serviceID)
	if err != nil {
		return nil, s.wrap(err, "failed to list reviews")
	}
	return reviews, nil
}

// Update edits a review's rating or comment. Only the author may edit.
func (s *ReviewService) Update(reviewID, requesterID uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, s.wrap(err, "failed to update review")
	}
	if review.UserID != requesterID {
		return nil, apperrors.Forbidden("you can only edit your own reviews")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, s.wrap(err, "failed to update review")
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
	}).Info("Review updated")

	return review, nil
}

// Delete removes a review. The author or an admin may delete.
func (s *ReviewService) Delete(reviewID, requesterID uuid.UUID, isAdmin bool) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return s.wrap(err, "failed to delete review")
	}
	if !isAdmin && review.UserID != requesterID {
		return apperrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return s.wrap(err, "failed to delete review")
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": reviewID,
		"admin":     isAdmin,
	}).Info("Review deleted")

	return nil
}

// wrap passes typed errors through untouched and hides everything else
// behind an internal error
func (s *ReviewService) wrap(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}
