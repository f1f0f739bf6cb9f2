package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bookit/booking-backend/internal/config"
	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// BookingService owns the booking lifecycle: creation, reading, reschedules,
// status transitions, cancellation and deletion. Conflict detection runs here
// before every write, and the store's exclusion constraint backs it up so
// concurrent writers for the same service can never double-book a slot.
type BookingService struct {
	bookingRepo *database.BookingRepository
	serviceRepo *database.ServiceRepository
	cfg         config.BookingConfig
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	serviceRepo *database.ServiceRepository,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Create books a slot for the requester. The slot length comes from the
// service's configured duration, so end time is never client-supplied.
func (s *BookingService) Create(requesterID uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	// 1. The slot must start in the future
	if !req.StartTime.After(time.Now()) {
		return nil, apperrors.Validation("start_time must be in the future")
	}

	// 2. Look up the service for duration and availability
	service, err := s.serviceRepo.GetByID(req.ServiceID)
	if err != nil {
		return nil, s.wrap(err, "failed to create booking")
	}
	if !service.IsActive {
		return nil, apperrors.Validation("service is not available for booking")
	}

	slot := models.NewTimeSlot(req.StartTime, service.DurationMinutes)

	// 3. Reject overlaps with existing pending/confirmed bookings
	conflicts, err := s.bookingRepo.FindConflicting(service.ID, slot, nil)
	if err != nil {
		return nil, s.wrap(err, "failed to create booking")
	}
	if len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}

	// 4. Persist; the exclusion constraint catches writers that raced past
	// the check above
	booking := &models.Booking{
		UserID:    requesterID,
		ServiceID: service.ID,
		StartTime: slot.Start,
		EndTime:   slot.End,
		Status:    models.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, s.wrap(err, "failed to create booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    requesterID,
		"service_id": service.ID,
		"start_time": booking.StartTime,
		"end_time":   booking.EndTime,
	}).Info("Booking created")

	return booking, nil
}

// Get fetches a booking. Only the owner and admins may read it.
func (s *BookingService) Get(bookingID, requesterID uuid.UUID, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, s.wrap(err, "failed to fetch booking")
	}

	if !isAdmin && !booking.IsOwnedBy(requesterID) {
		return nil, apperrors.Forbidden("you do not have access to this booking")
	}

	return booking, nil
}

// List returns bookings matching the filter, most recent start first.
// Non-admins are always scoped to their own bookings regardless of the
// filter; admins see everything unless they filter by user themselves.
func (s *BookingService) List(requesterID uuid.UUID, isAdmin bool, filter models.BookingFilter) ([]models.Booking, error) {
	if !isAdmin {
		filter.UserID = &requesterID
	}

	bookings, err := s.bookingRepo.List(filter)
	if err != nil {
		return nil, s.wrap(err, "failed to list bookings")
	}

	return bookings, nil
}

// Update applies a status transition, a reschedule, or both. The write is
// guarded by the status the booking had when it was read, so a concurrent
// transition by another request fails this one with a conflict instead of
// silently overwriting it.
func (s *BookingService) Update(bookingID, requesterID uuid.UUID, isAdmin bool, req *models.UpdateBookingRequest) (*models.Booking, error) {
	// 1. There must be something to change
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Fetch and authorize
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, s.wrap(err, "failed to update booking")
	}
	if !isAdmin && !booking.IsOwnedBy(requesterID) {
		return nil, apperrors.Forbidden("you do not have access to this booking")
	}

	// The status read here guards the final write
	expectedStatus := booking.Status

	// 3. Status transition per the state machine
	if req.Status != nil {
		target, err := models.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if err := models.CanTransition(booking.Status, target, isAdmin); err != nil {
			return nil, err
		}
		booking.Status = target
	}

	// 4. Reschedule, recomputing the end from the service duration
	if req.StartTime != nil {
		if booking.Status.IsTerminal() {
			return nil, apperrors.Validation(fmt.Sprintf("cannot reschedule a %s booking", booking.Status))
		}
		if !req.StartTime.After(time.Now()) {
			return nil, apperrors.Validation("start_time must be in the future")
		}

		service, err := s.serviceRepo.GetByID(booking.ServiceID)
		if err != nil {
			return nil, s.wrap(err, "failed to update booking")
		}

		slot := models.NewTimeSlot(*req.StartTime, service.DurationMinutes)

		conflicts, err := s.bookingRepo.FindConflicting(booking.ServiceID, slot, &booking.ID)
		if err != nil {
			return nil, s.wrap(err, "failed to update booking")
		}
		if len(conflicts) > 0 {
			return nil, conflictError(conflicts)
		}

		booking.StartTime = slot.Start
		booking.EndTime = slot.End
	}

	// 5. One guarded write carries both changes
	if err := s.bookingRepo.Update(booking, expectedStatus); err != nil {
		return nil, s.wrap(err, "failed to update booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"user_id":     requesterID,
		"from_status": expectedStatus,
		"to_status":   booking.Status,
		"start_time":  booking.StartTime,
	}).Info("Booking updated")

	return booking, nil
}

// Cancel is the shorthand for updating a booking's status to cancelled
func (s *BookingService) Cancel(bookingID, requesterID uuid.UUID, isAdmin bool) (*models.Booking, error) {
	status := string(models.BookingStatusCancelled)
	return s.Update(bookingID, requesterID, isAdmin, &models.UpdateBookingRequest{Status: &status})
}

// Delete permanently removes a booking. Owners may only delete bookings that
// have not started and are not completed; admins may delete anything.
func (s *BookingService) Delete(bookingID, requesterID uuid.UUID, isAdmin bool) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return s.wrap(err, "failed to delete booking")
	}
	if !isAdmin && !booking.IsOwnedBy(requesterID) {
		return apperrors.Forbidden("you do not have access to this booking")
	}

	if !isAdmin {
		if booking.HasStarted(time.Now()) {
			return apperrors.Validation("cannot delete a booking that has already started")
		}
		if booking.Status == models.BookingStatusCompleted {
			return apperrors.Validation("cannot delete a completed booking")
		}
	}

	if err := s.bookingRepo.Delete(bookingID); err != nil {
		return s.wrap(err, "failed to delete booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    requesterID,
		"is_admin":   isAdmin,
	}).Info("Booking deleted")

	return nil
}

// ListUpcoming returns the requester's active bookings starting within the
// next daysAhead days, soonest first. A zero daysAhead takes the configured
// default.
func (s *BookingService) ListUpcoming(requesterID uuid.UUID, daysAhead int) ([]models.Booking, error) {
	if daysAhead == 0 {
		daysAhead = s.cfg.UpcomingDaysAheadDefault
	}
	if daysAhead < 1 || daysAhead > 365 {
		return nil, apperrors.Validation("days_ahead must be between 1 and 365")
	}

	now := time.Now()
	until := now.AddDate(0, 0, daysAhead)

	bookings, err := s.bookingRepo.ListUpcoming(requesterID, now, until)
	if err != nil {
		return nil, s.wrap(err, "failed to list upcoming bookings")
	}

	return bookings, nil
}

// wrap passes typed errors through untouched and hides everything else
// behind an internal error
func (s *BookingService) wrap(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

// conflictError builds the conflict failure listing the bookings in the way
func conflictError(conflicts []models.Booking) error {
	ids := make([]string, len(conflicts))
	for i, c := range conflicts {
		ids[i] = c.ID.String()
	}
	return apperrors.Conflict("requested time conflicts with an existing booking").
		WithDetails(map[string]any{"conflicting_booking_ids": ids})
}
