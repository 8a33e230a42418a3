package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

func renderError(t *testing.T, method string, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/delivery/shipments/s1", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(err, e.NewContext(req, rec))

	var body errorResponse
	if method != http.MethodHead {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, body
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrShipmentNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("load: %w", domain.ErrTrackingNotFound), http.StatusNotFound, "not_found"},
		{domain.ErrZoneNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrVersionConflict, http.StatusConflict, "concurrent_update"},
		{domain.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
		{domain.ErrAgentExists, http.StatusConflict, "conflict"},
		{domain.ErrNoAgentAvailable, http.StatusConflict, "agent_unavailable"},
		{domain.ErrNoServiceableZone, http.StatusBadRequest, "no_serviceable_zone"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrProofStorageDisabled, http.StatusServiceUnavailable, "proof_storage_disabled"},
		{fmt.Errorf("%w: PICKED_UP -> DELIVERED", domain.ErrInvalidTransition), http.StatusBadRequest, "invalid_transition"},
	}
	for _, tt := range tests {
		rec, body := renderError(t, http.MethodGet, tt.err)
		if rec.Code != tt.status || body.Code != tt.code {
			t.Errorf("%v: want %d/%s, got %d/%s", tt.err, tt.status, tt.code, rec.Code, body.Code)
		}
	}
}

func TestErrorHandler_ValidationCarriesField(t *testing.T) {
	rec, body := renderError(t, http.MethodPost, domain.NewValidationError("weight", "must be positive"))
	if rec.Code != http.StatusBadRequest || body.Code != "validation_error" || body.Field != "weight" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestErrorHandler_UnknownErrorIsMasked(t *testing.T) {
	rec, body := renderError(t, http.MethodGet, errors.New("mongo: connection reset by 10.0.0.4"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body.Error != "internal server error" || body.Code != "internal_error" {
		t.Fatalf("internal detail leaked: %+v", body)
	}
}

func TestErrorHandler_HTTPError(t *testing.T) {
	busy := echo.NewHTTPError(http.StatusServiceUnavailable, "location queue is busy, retry shortly").SetInternal(errors.New("full"))
	rec, body := renderError(t, http.MethodPost, busy)
	if rec.Code != http.StatusServiceUnavailable || body.Error != "location queue is busy, retry shortly" || body.Code != "unavailable" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}

	rec, body = renderError(t, http.MethodGet, echo.NewHTTPError(http.StatusInternalServerError, "could not resolve agent identity"))
	if rec.Code != http.StatusInternalServerError || body.Error != "internal server error" {
		t.Fatalf("500 message not masked: %+v", body)
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	rec, _ := renderError(t, http.MethodHead, domain.ErrShipmentNotFound)
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("unexpected HEAD response %d %q", rec.Code, rec.Body.String())
	}
}
