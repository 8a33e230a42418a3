package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and a stable code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Error().
				Err(he.Internal).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return he.Code, errorResponse{Error: httpErrorMessage(he), Code: codeForStatus(he.Code)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: "validation_error", Field: ve.Field}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_transition"}
	case errors.Is(err, domain.ErrShipmentNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrShipmentNotFound.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrTrackingNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrTrackingNotFound.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrAgentNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrAgentNotFound.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrZoneNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrZoneNotFound.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: domain.ErrUserNotFound.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error(), Code: "forbidden"}
	case errors.Is(err, domain.ErrConcurrentUpdate), errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, errorResponse{Error: domain.ErrConcurrentUpdate.Error(), Code: "concurrent_update"}
	case errors.Is(err, domain.ErrAgentExists), errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrDuplicateShipment):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"}
	case errors.Is(err, domain.ErrAgentNotDispatchable), errors.Is(err, domain.ErrNoAgentAvailable):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "agent_unavailable"}
	case errors.Is(err, domain.ErrNoServiceableZone):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrNoServiceableZone.Error(), Code: "no_serviceable_zone"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Code: "invalid_credentials"}
	case errors.Is(err, domain.ErrProofStorageDisabled):
		return http.StatusServiceUnavailable, errorResponse{Error: domain.ErrProofStorageDisabled.Error(), Code: "proof_storage_disabled"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal_error"}
}

func httpErrorMessage(he *echo.HTTPError) string {
	if he.Code == http.StatusInternalServerError {
		return "internal server error"
	}
	return fmt.Sprintf("%v", he.Message)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}
