package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
)

// ErrorResponse is the JSON error body returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusOf maps errno sentinels to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errno.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errno.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errno.ErrInvalidReference),
		errors.Is(err, errno.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errno.ErrReservedID),
		errors.Is(err, errno.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, errno.ErrOverloaded):
		return http.StatusTooManyRequests
	case errors.Is(err, errno.ErrInvalidState):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status.
func writeError(c *gin.Context, err error) {
	c.JSON(statusOf(err), ErrorResponse{Error: err.Error()})
}

// writeBindError renders a 400 for malformed request bodies.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body binding failed: " + err.Error()})
}
