package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bookit/booking-backend/pkg/apperrors"
)

// respondError writes the JSON error body for a failed request. Typed
// errors carry their own HTTP status; anything untyped becomes a 500.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, apperrors.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
