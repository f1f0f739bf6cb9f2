package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/middleware"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
)

// BookingHandler handles booking operations
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create books a service for a time slot
// @Summary Create a booking
// @Description Book a service starting at the given time; the end is computed from the service duration
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking "Booking created"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 404 {object} apperrors.ErrorResponse "Service not found"
// @Failure 409 {object} apperrors.ErrorResponse "Slot already taken"
// @Security BearerAuth
// @Router /api/v1/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// List returns bookings visible to the caller
// @Summary List bookings
// @Description Regular users see their own bookings; admins see everyone's and may filter by user_id
// @Tags Bookings
// @Produce json
// @Param status query string false "Filter by status"
// @Param from_date query string false "Bookings starting at or after (RFC 3339)"
// @Param to_date query string false "Bookings starting at or before (RFC 3339)"
// @Param user_id query string false "Filter by owner (admin only)"
// @Success 200 {object} map[string]interface{} "Bookings, newest start first"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var filter models.BookingFilter

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = &status
	}

	if raw := c.Query("from_date"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from_date, expected RFC 3339"})
			return
		}
		filter.From = &from
	}

	if raw := c.Query("to_date"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to_date, expected RFC 3339"})
			return
		}
		filter.To = &to
	}

	if raw := c.Query("user_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			return
		}
		filter.UserID = &ownerID
	}

	bookings, err := h.bookingService.List(userCtx.UserID, userCtx.IsAdmin(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListUpcoming returns the caller's upcoming active bookings
// @Summary List upcoming bookings
// @Description Own pending and confirmed bookings starting within the window, soonest first
// @Tags Bookings
// @Produce json
// @Param days_ahead query int false "Window size in days, 1-365 (default 30)"
// @Success 200 {object} map[string]interface{} "Upcoming bookings"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid window"
// @Security BearerAuth
// @Router /api/v1/bookings/upcoming [get]
func (h *BookingHandler) ListUpcoming(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	daysAhead := 0
	if raw := c.Query("days_ahead"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days_ahead value"})
			return
		}
		daysAhead = value
	}

	bookings, err := h.bookingService.ListUpcoming(userCtx.UserID, daysAhead)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Get returns a single booking
// @Summary Get a booking
// @Description Fetch a booking; owners and admins only
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Booking"
// @Failure 403 {object} apperrors.ErrorResponse "Not the owner"
// @Failure 404 {object} apperrors.ErrorResponse "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingService.Get(bookingID, userCtx.UserID, userCtx.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Update changes a booking's status or reschedules it
// @Summary Update a booking
// @Description Change status, reschedule, or both in one atomic write
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.UpdateBookingRequest true "Fields to update"
// @Success 200 {object} models.Booking "Updated booking"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid transition or reschedule"
// @Failure 403 {object} apperrors.ErrorResponse "Not permitted"
// @Failure 409 {object} apperrors.ErrorResponse "Slot taken or concurrent update"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Update(bookingID, userCtx.UserID, userCtx.IsAdmin(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Cancel cancels a booking
// @Summary Cancel a booking
// @Description Shorthand for updating the status to cancelled
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Cancelled booking"
// @Failure 400 {object} apperrors.ErrorResponse "Already in a terminal status"
// @Failure 403 {object} apperrors.ErrorResponse "Not the owner"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingService.Cancel(bookingID, userCtx.UserID, userCtx.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Delete removes a booking
// @Summary Delete a booking
// @Description Owners may delete bookings that have not started and are not completed; admins may delete any
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204 "Booking deleted"
// @Failure 400 {object} apperrors.ErrorResponse "Booking started or completed"
// @Failure 403 {object} apperrors.ErrorResponse "Not the owner"
// @Failure 404 {object} apperrors.ErrorResponse "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.bookingService.Delete(bookingID, userCtx.UserID, userCtx.IsAdmin()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
