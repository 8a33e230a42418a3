package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// stubDeliveryService overrides the methods a test needs; calling any other
// method panics on the nil embedded interface.
type stubDeliveryService struct {
	ports.DeliveryService
	quoteFn         func(ctx context.Context, in ports.QuoteInput) (*ports.QuoteResult, error)
	createFn        func(ctx context.Context, in ports.CreateShipmentInput) (*ports.CreateShipmentResult, error)
	trackFn         func(ctx context.Context, trackingNumber string) (*ports.TrackingView, error)
	updateFn        func(ctx context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error)
	listFn          func(ctx context.Context, in ports.ListShipmentsInput) (*ports.ShipmentPage, error)
	agentDeliveryFn func(ctx context.Context, agentID, status string) ([]*domain.Shipment, error)
}

func (s *stubDeliveryService) Quote(ctx context.Context, in ports.QuoteInput) (*ports.QuoteResult, error) {
	return s.quoteFn(ctx, in)
}

func (s *stubDeliveryService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*ports.CreateShipmentResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubDeliveryService) TrackByNumber(ctx context.Context, trackingNumber string) (*ports.TrackingView, error) {
	return s.trackFn(ctx, trackingNumber)
}

func (s *stubDeliveryService) UpdateStatus(ctx context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error) {
	return s.updateFn(ctx, req)
}

func (s *stubDeliveryService) ListShipments(ctx context.Context, in ports.ListShipmentsInput) (*ports.ShipmentPage, error) {
	return s.listFn(ctx, in)
}

func (s *stubDeliveryService) AgentDeliveries(ctx context.Context, agentID, status string) ([]*domain.Shipment, error) {
	return s.agentDeliveryFn(ctx, agentID, status)
}

// newContext builds a request context with the validator installed and the
// given auth claims set, as the Auth and AgentIdentity middleware would.
func newContext(method, target, body string, claims map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range claims {
		c.Set(k, v)
	}
	return c, rec
}

func customerClaims() map[string]string {
	return map[string]string{"role": domain.RoleCustomer, "user_id": "cust-1", "username": "ada"}
}

func agentClaims() map[string]string {
	return map[string]string{"role": domain.RoleAgent, "user_id": "user-7", "agent_id": "agent-7"}
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != field {
		t.Fatalf("field: want %s, got %s (%s)", field, ve.Field, ve.Message)
	}
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != status {
		t.Fatalf("expected HTTP %d, got %v", status, err)
	}
}

const createBody = `{
	"pickupAddress":   {"address":"12 Allen Avenue","city":"Ikeja","coordinates":{"latitude":6.6018,"longitude":3.3515}},
	"deliveryAddress": {"address":"3 Opebi Road","city":"Ikeja","coordinates":{"latitude":6.6468,"longitude":3.3515}},
	"weight": 2,
	"packageValue": 5000,
	"deliveryType": "EXPRESS",
	"codAmount": 5000
}`

// ---------------------------------------------------------------------------
// Quote
// ---------------------------------------------------------------------------

func TestDeliveryHandler_Quote_MissingPackageValue(t *testing.T) {
	h := NewDeliveryHandler(&stubDeliveryService{})
	c, _ := newContext(http.MethodPost, "/delivery/quote",
		`{"pickup":{"latitude":6.6,"longitude":3.35},"delivery":{"latitude":6.65,"longitude":3.35},"weight":1}`, nil)
	requireValidationField(t, h.Quote(c), "packageValue")
}

func TestDeliveryHandler_Quote_BadLatitude(t *testing.T) {
	h := NewDeliveryHandler(&stubDeliveryService{})
	c, _ := newContext(http.MethodPost, "/delivery/quote",
		`{"pickup":{"latitude":96,"longitude":3.35},"delivery":{"latitude":6.65,"longitude":3.35},"packageValue":0}`, nil)
	requireValidationField(t, h.Quote(c), "pickup.latitude")
}

func TestDeliveryHandler_Quote_Success(t *testing.T) {
	var got ports.QuoteInput
	stub := &stubDeliveryService{
		quoteFn: func(_ context.Context, in ports.QuoteInput) (*ports.QuoteResult, error) {
			got = in
			return &ports.QuoteResult{Success: true, Rates: []ports.Rate{{
				Carrier: "Internal Fleet", DeliveryType: domain.DeliveryStandard, Fee: 550, Currency: "NGN",
				EstimatedHours: 48, EstimatedDays: 2,
			}}}, nil
		},
	}
	h := NewDeliveryHandler(stub)
	c, rec := newContext(http.MethodPost, "/delivery/quote",
		`{"pickup":{"latitude":6.6,"longitude":3.35},"delivery":{"latitude":6.65,"longitude":3.35},"weight":1,"packageValue":100000,"cod":true}`, nil)
	if err := h.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !got.COD || got.PackageValue != 100000 || got.Pickup.Lat != 6.6 {
		t.Fatalf("unexpected service input %+v", got)
	}
	body := decodeBody(t, rec)
	rates := body["rates"].([]any)
	if body["success"] != true || len(rates) != 1 || rates[0].(map[string]any)["fee"] != 550.0 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDeliveryHandler_Quote_NoZoneStillOK(t *testing.T) {
	stub := &stubDeliveryService{
		quoteFn: func(context.Context, ports.QuoteInput) (*ports.QuoteResult, error) {
			return &ports.QuoteResult{Success: false, Message: "no serviceable zone for location", Rates: []ports.Rate{}}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/delivery/quote",
		`{"pickup":{"latitude":9,"longitude":7},"delivery":{"latitude":9.1,"longitude":7},"packageValue":10}`, nil)
	if err := NewDeliveryHandler(stub).Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"rates":[]`) || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func createdResult(existed bool) *ports.CreateShipmentResult {
	return &ports.CreateShipmentResult{
		Shipment: &domain.Shipment{
			ID: "s1", TrackingNumber: "DLV-00A1B2C3D4", Status: domain.StatusPending,
			DeliveryFee: 770, Currency: "NGN", CreatedAt: time.Now(),
		},
		AlreadyExisted: existed,
		Assignment:     ports.AssignmentUnavailable,
	}
}

func TestDeliveryHandler_Create_Success(t *testing.T) {
	var got ports.CreateShipmentInput
	stub := &stubDeliveryService{
		createFn: func(_ context.Context, in ports.CreateShipmentInput) (*ports.CreateShipmentResult, error) {
			got = in
			return createdResult(false), nil
		},
	}
	c, rec := newContext(http.MethodPost, "/delivery/shipments", createBody, customerClaims())
	c.Request().Header.Set("Idempotency-Key", " order-1 ")
	if err := NewDeliveryHandler(stub).CreateShipment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.CustomerID != "cust-1" || got.IdempotencyKey != "order-1" {
		t.Fatalf("actor or key not forwarded: %+v", got)
	}
	if got.CODAmount == nil || *got.CODAmount != 5000 || got.Delivery.Coordinates.Lat != 6.6468 {
		t.Fatalf("body not mapped: %+v", got)
	}
	body := decodeBody(t, rec)
	if body["trackingNumber"] != "DLV-00A1B2C3D4" || body["assignment"] != "unavailable" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDeliveryHandler_Create_ReplayReturns200(t *testing.T) {
	stub := &stubDeliveryService{
		createFn: func(context.Context, ports.CreateShipmentInput) (*ports.CreateShipmentResult, error) {
			return createdResult(true), nil
		},
	}
	c, rec := newContext(http.MethodPost, "/delivery/shipments", createBody, customerClaims())
	if err := NewDeliveryHandler(stub).CreateShipment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestDeliveryHandler_Create_MissingClaims(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/delivery/shipments", createBody, nil)
	requireHTTPStatus(t, NewDeliveryHandler(&stubDeliveryService{}).CreateShipment(c), http.StatusUnauthorized)
}

func TestDeliveryHandler_Create_MissingAddress(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/delivery/shipments", `{"packageValue":1}`, customerClaims())
	requireValidationField(t, NewDeliveryHandler(&stubDeliveryService{}).CreateShipment(c), "pickupAddress")
}

func TestDeliveryHandler_Create_InvalidJSON(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/delivery/shipments", `{"weight":`, customerClaims())
	requireHTTPStatus(t, NewDeliveryHandler(&stubDeliveryService{}).CreateShipment(c), http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

func TestDeliveryHandler_TrackByNumber(t *testing.T) {
	dist := 1.2
	stub := &stubDeliveryService{
		trackFn: func(_ context.Context, n string) (*ports.TrackingView, error) {
			if n != "DLV-00A1B2C3D4" {
				return nil, domain.ErrTrackingNotFound
			}
			return &ports.TrackingView{
				TrackingNumber:          n,
				Status:                  domain.StatusOutForDelivery,
				DistanceToDestinationKm: &dist,
				Agent:                   &ports.AgentContact{Name: "Chidi", Phone: "+234******0000", VehicleType: domain.VehicleBike},
				Events:                  []ports.TrackingEventView{{Type: domain.EventCreated, Status: domain.StatusPending, Description: "Shipment created"}},
			}, nil
		},
	}
	h := NewDeliveryHandler(stub)

	c, rec := newContext(http.MethodGet, "/delivery/track/DLV-00A1B2C3D4", "", nil)
	c.SetParamNames("trackingNumber")
	c.SetParamValues("DLV-00A1B2C3D4")
	if err := h.TrackByNumber(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	if body["status"] != "OUT_FOR_DELIVERY" || body["distanceToDestinationKm"] != 1.2 {
		t.Fatalf("unexpected body %v", body)
	}
	for _, leaked := range []string{"id", "customerId", "agentId"} {
		if _, ok := body[leaked]; ok {
			t.Errorf("tracking view leaks %s", leaked)
		}
	}

	c, _ = newContext(http.MethodGet, "/delivery/track/DLV-FFFFFFFFFF", "", nil)
	c.SetParamNames("trackingNumber")
	c.SetParamValues("DLV-FFFFFFFFFF")
	if err := h.TrackByNumber(c); !errors.Is(err, domain.ErrTrackingNotFound) {
		t.Fatalf("expected ErrTrackingNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Status updates
// ---------------------------------------------------------------------------

func TestDeliveryHandler_UpdateStatus_ForwardsAgentActor(t *testing.T) {
	var got ports.TransitionRequest
	stub := &stubDeliveryService{
		updateFn: func(_ context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error) {
			got = req
			s := &domain.Shipment{ID: req.ShipmentID, Status: domain.StatusFailed}
			return &ports.TransitionOutcome{Shipment: s, Effect: ports.EffectPending, EffectError: "agent store unavailable"}, nil
		},
	}
	c, rec := newContext(http.MethodPatch, "/delivery/shipments/s1/status",
		`{"status":"FAILED","failedReason":"gate locked","location":{"latitude":6.6,"longitude":3.3}}`, agentClaims())
	c.SetParamNames("id")
	c.SetParamValues("s1")
	if err := NewDeliveryHandler(stub).UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Actor.ID != "agent-7" || got.Actor.Role != domain.RoleAgent || got.ShipmentID != "s1" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.FailedReason != "gate locked" || got.Location == nil || got.Location.Lat != 6.6 {
		t.Fatalf("body not mapped: %+v", got)
	}
	body := decodeBody(t, rec)
	if body["agentStats"] != "pending" || body["agentStatsError"] != "agent store unavailable" {
		t.Fatalf("effect status not exposed: %v", body)
	}
}

func TestDeliveryHandler_UpdateStatus_UnregisteredAgent(t *testing.T) {
	claims := agentClaims()
	delete(claims, "agent_id")
	c, _ := newContext(http.MethodPatch, "/delivery/shipments/s1/status", `{"status":"PICKED_UP"}`, claims)
	requireHTTPStatus(t, NewDeliveryHandler(&stubDeliveryService{}).UpdateStatus(c), http.StatusForbidden)
}

func TestDeliveryHandler_UploadProof_RequiresFile(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/delivery/shipments/s1/proof", "", agentClaims())
	c.SetParamNames("id")
	c.SetParamValues("s1")
	requireHTTPStatus(t, NewDeliveryHandler(&stubDeliveryService{}).UploadProof(c), http.StatusBadRequest)
}
