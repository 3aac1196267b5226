// file: controllers/errors.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"catfish-cull/importer"
	"catfish-cull/logger"
	"catfish-cull/models"
	"catfish-cull/services"
	"catfish-cull/websocket"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCatch),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidTeam),
		errors.Is(err, websocket.ErrInvalidAction),
		errors.Is(err, websocket.ErrUnknownAction),
		errors.Is(err, importer.ErrNoHeader):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrCatchNotFound),
		errors.Is(err, websocket.ErrUnknownDisplay),
		errors.Is(err, websocket.ErrDisplayNotRunning):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEventFinal),
		errors.Is(err, services.ErrDuplicateTeamNumber):
		return http.StatusConflict
	case errors.Is(err, services.ErrFeedNotReady),
		errors.Is(err, websocket.ErrDisplayClosed),
		errors.Is(err, websocket.ErrTooManyDisplays):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected errors are logged and
// reported without detail.
func respondError(c *gin.Context, where string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("[%s] %v", where, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	logger.Warn.Printf("[%s] %v", where, err)
	c.JSON(status, gin.H{"error": err.Error()})
}
