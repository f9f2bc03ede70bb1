package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// Client-facing error messages.
const (
	MsgInvalidUpdates   = "Invalid updates"
	MsgValidationFailed = "Validation failed"
	MsgInvalidBody      = "Invalid request body"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// A malformed id names nothing, so it is reported like a missing one.
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidUpdates),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidBody),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to the client for err. An
// empty string means the response has no body.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return middleware.UnauthenticatedMessage
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return ""
	case errors.Is(err, domain.ErrInvalidUpdates):
		return MsgInvalidUpdates
	case errors.Is(err, domain.ErrValidation):
		return MsgValidationFailed
	case errors.Is(err, shared.ErrInvalidBody):
		return MsgInvalidBody
	default:
		return ""
	}
}

// respondWithServiceError writes the response for err. Validation failures
// carry a field -> message map; nothing else reveals error details.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var fields map[string]string
	if status == http.StatusBadRequest && errors.Is(err, domain.ErrValidation) {
		fields = domain.FieldErrors(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), fields, err)
}
