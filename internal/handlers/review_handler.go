package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/middleware"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
)

// ReviewHandler handles review operations
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create leaves a review on a completed booking
// @Summary Create a review
// @Description Review one of your own completed bookings; one review per booking
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body models.CreateReviewRequest true "Review"
// @Success 201 {object} models.Review "Review created"
// @Failure 400 {object} apperrors.ErrorResponse "Booking not completed or rating out of range"
// @Failure 403 {object} apperrors.ErrorResponse "Not your booking"
// @Failure 409 {object} apperrors.ErrorResponse "Booking already reviewed"
// @Security BearerAuth
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	review, err := h.reviewService.Create(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetByBooking returns the review left on a booking
// @Summary Get a booking's review
// @Tags Reviews
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Success 200 {object} models.Review "Review"
// @Failure 404 {object} apperrors.ErrorResponse "No review for this booking"
// @Router /api/v1/reviews/booking/{booking_id} [get]
func (h *ReviewHandler) GetByBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	review, err := h.reviewService.GetByBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Update edits a review
// @Summary Update a review
// @Description Authors may edit the rating or comment of their own reviews
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body models.UpdateReviewRequest true "Fields to update"
// @Success 200 {object} models.Review "Updated review"
// @Failure 403 {object} apperrors.ErrorResponse "Not the author"
// @Failure 404 {object} apperrors.ErrorResponse "Review not found"
// @Security BearerAuth
// @Router /api/v1/reviews/{id} [patch]
func (h *ReviewHandler) Update(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	review, err := h.reviewService.Update(reviewID, userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Delete removes a review
// @Summary Delete a review
// @Description Authors may delete their own reviews; admins may delete any
// @Tags Reviews
// @Param id path string true "Review ID"
// @Success 204 "Review deleted"
// @Failure 403 {object} apperrors.ErrorResponse "Not the author"
// @Failure 404 {object} apperrors.ErrorResponse "Review not found"
// @Security BearerAuth
// @Router /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	if err := h.reviewService.Delete(reviewID, userCtx.UserID, userCtx.IsAdmin()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
