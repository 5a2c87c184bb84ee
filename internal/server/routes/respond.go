package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/models"
)

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a 500 without detail.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the request body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// currentUser returns the user stored by AuthMiddleware.
func currentUser(c *gin.Context) models.User {
	return c.MustGet(userKey).(models.User)
}
