package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/chitpool/internal/models"
)

// APIError is the machine-readable error body returned on failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps every error response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// codeForError maps ledger errors to stable machine codes. The codes are
// part of the API contract; clients branch on them, not on messages.
func codeForError(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrInvalidDeadline):
		return "invalid_deadline"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrExpired):
		return "pool_expired"
	case errors.Is(err, models.ErrFull):
		return "pool_full"
	case errors.Is(err, models.ErrAlreadyJoined):
		return "already_joined"
	default:
		return "internal"
	}
}

// statusForError maps ledger errors onto HTTP statuses: validation problems
// are 400s, unknown pools 404, business-rule conflicts 409.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidDeadline):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrExpired), errors.Is(err, models.ErrFull), errors.Is(err, models.ErrAlreadyJoined):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope for err.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), ErrorEnvelope{Error: APIError{
		Code:    codeForError(err),
		Message: err.Error(),
	}})
}
