package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estatescout/internal/repository"
	"estatescout/internal/service"
)

// writeError maps service and store errors to a status and a short message.
// Anything unrecognised is logged and reported as a 500.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidInputMessage(err)})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, repository.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Property not found"})
	default:
		h.log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

func invalidInputMessage(err error) string {
	prefix := service.ErrInvalidInput.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return "Invalid request"
}
