package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/internal/service"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError translates service errors into HTTP responses. Unknown errors
// are logged and reported as internal.
func writeError(c *gin.Context, err error) {
	status, code := statusForError(err)
	switch status {
	case http.StatusServiceUnavailable:
		// Underlying dependency errors carry connection details; keep
		// those in the logs, not the response body.
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Dependency failure")
		c.JSON(status, ErrorResponse{Error: service.ErrDependency.Error(), Code: code})
	case http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: code})
	default:
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
	}
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDonationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrNotAvailable),
		errors.Is(err, service.ErrNotClaimed),
		errors.Is(err, service.ErrNotCompleted),
		errors.Is(err, service.ErrAlreadyRated):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrMissingCoordinates),
		errors.Is(err, service.ErrMissingSubject),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidRole):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrDependency):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
