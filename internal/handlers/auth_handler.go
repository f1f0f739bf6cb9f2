package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookit/booking-backend/internal/middleware"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
	"github.com/bookit/booking-backend/internal/utils"
)

// AuthHandler handles registration, login, and token operations
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account
// @Summary Register a new account
// @Description Create an account with the regular user role
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.User "Account created"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login authenticates an account and issues tokens
// @Summary Log in
// @Description Verify credentials and issue an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenPairResponse "Token pair"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pair, err := h.authService.Login(&req, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh request"
// @Success 200 {object} models.TokenPairResponse "New token pair"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid or revoked refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout revokes the presented access token
// @Summary Log out
// @Description Revoke the presented access token until it expires
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid token"
// @Security BearerAuth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.Logout(token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated account
// @Summary Get current account
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User "Current account"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
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

// Sessions lists the caller's login history
// @Summary List login sessions
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Login history"
// @Failure 401 {object} apperrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/auth/sessions [get]
func (h *AuthHandler) Sessions(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.authService.Sessions(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// bearerToken pulls the raw token out of the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
