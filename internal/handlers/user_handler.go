package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookit/booking-backend/internal/middleware"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
)

// UserHandler handles profile operations
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// GetProfile returns the caller's profile
// @Summary Get own profile
// @Tags Users
// @Produce json
// @Success 200 {object} models.User "Profile"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.Me(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the caller's profile
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User "Updated profile"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthorized"
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Security BearerAuth
// @Router /api/v1/users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.authService.UpdateProfile(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
