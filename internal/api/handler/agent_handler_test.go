package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

type stubAgentService struct {
	ports.AgentService
	registerFn     func(ctx context.Context, in ports.RegisterAgentInput) (*domain.Agent, error)
	availabilityFn func(ctx context.Context, userID string, available bool) (*domain.Agent, error)
	listFn         func(ctx context.Context, status string) ([]*domain.Agent, error)
}

func (s *stubAgentService) Register(ctx context.Context, in ports.RegisterAgentInput) (*domain.Agent, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAgentService) SetAvailability(ctx context.Context, userID string, available bool) (*domain.Agent, error) {
	return s.availabilityFn(ctx, userID, available)
}

func (s *stubAgentService) List(ctx context.Context, status string) ([]*domain.Agent, error) {
	return s.listFn(ctx, status)
}

type stubQueue struct {
	mu      sync.Mutex
	reports []ports.LocationReport
	err     error
}

func (q *stubQueue) Enqueue(r ports.LocationReport) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.reports = append(q.reports, r)
	return nil
}

func sampleAgent() *domain.Agent {
	return &domain.Agent{
		ID: "agent-7", UserID: "user-7", Name: "Chidi", Phone: "+2348099990000",
		VehicleType: domain.VehicleBike, MaxCapacityKg: 20,
		Status: domain.AgentPendingVerification, CreatedAt: time.Now(),
	}
}

// ---------------------------------------------------------------------------
// ReportLocation
// ---------------------------------------------------------------------------

func TestAgentHandler_ReportLocation_Queued(t *testing.T) {
	q := &stubQueue{}
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, q)
	c, rec := newContext(http.MethodPost, "/delivery/agent/location",
		`{"latitude":6.6,"longitude":3.35,"accuracy":12,"recordedAt":"2026-05-04T10:00:00Z"}`, agentClaims())

	if err := h.ReportLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(q.reports) != 1 {
		t.Fatalf("expected one queued report, got %d", len(q.reports))
	}
	r := q.reports[0]
	want := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	if r.AgentID != "agent-7" || r.Lat != 6.6 || r.AccuracyM != 12 || !r.RecordedAt.Equal(want) {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestAgentHandler_ReportLocation_DefaultsRecordedAt(t *testing.T) {
	q := &stubQueue{}
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, q)
	c, _ := newContext(http.MethodPost, "/delivery/agent/location", `{"latitude":0,"longitude":0}`, agentClaims())

	before := time.Now().Add(-time.Second)
	if err := h.ReportLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(q.reports) != 1 || q.reports[0].RecordedAt.Before(before) {
		t.Fatalf("expected server receive time, got %+v", q.reports)
	}
}

func TestAgentHandler_ReportLocation_QueueBusy(t *testing.T) {
	q := &stubQueue{err: errors.New("queue full")}
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, q)
	c, _ := newContext(http.MethodPost, "/delivery/agent/location", `{"latitude":6.6,"longitude":3.35}`, agentClaims())
	requireHTTPStatus(t, h.ReportLocation(c), http.StatusServiceUnavailable)
}

func TestAgentHandler_ReportLocation_MissingLatitude(t *testing.T) {
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, &stubQueue{})
	c, _ := newContext(http.MethodPost, "/delivery/agent/location", `{"longitude":3.35}`, agentClaims())
	requireValidationField(t, h.ReportLocation(c), "latitude")
}

func TestAgentHandler_ReportLocation_UnregisteredAgent(t *testing.T) {
	q := &stubQueue{}
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, q)
	claims := agentClaims()
	delete(claims, "agent_id")
	c, _ := newContext(http.MethodPost, "/delivery/agent/location", `{"latitude":6.6,"longitude":3.35}`, claims)
	requireHTTPStatus(t, h.ReportLocation(c), http.StatusForbidden)
	if len(q.reports) != 0 {
		t.Fatal("report queued for an unregistered agent")
	}
}

// ---------------------------------------------------------------------------
// Register / availability
// ---------------------------------------------------------------------------

func TestAgentHandler_Register(t *testing.T) {
	var got ports.RegisterAgentInput
	stub := &stubAgentService{
		registerFn: func(_ context.Context, in ports.RegisterAgentInput) (*domain.Agent, error) {
			got = in
			return sampleAgent(), nil
		},
	}
	h := NewAgentHandler(stub, &stubDeliveryService{}, &stubQueue{})
	c, rec := newContext(http.MethodPost, "/delivery/agent/register",
		`{"name":"Chidi","phone":"+2348099990000","vehicleType":"bike","maxCapacityKg":20}`,
		map[string]string{"role": domain.RoleAgent, "user_id": "user-7"})

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.UserID != "user-7" || got.VehicleType != "bike" || got.MaxCapacityKg != 20 {
		t.Fatalf("unexpected service input %+v", got)
	}
	body := decodeBody(t, rec)
	if body["userId"] != "user-7" || body["status"] != "pending_verification" || body["isVerified"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAgentHandler_Register_ShortPhone(t *testing.T) {
	h := NewAgentHandler(&stubAgentService{}, &stubDeliveryService{}, &stubQueue{})
	c, _ := newContext(http.MethodPost, "/delivery/agent/register",
		`{"name":"Chidi","phone":"123","vehicleType":"bike","maxCapacityKg":20}`,
		map[string]string{"role": domain.RoleAgent, "user_id": "user-7"})
	requireValidationField(t, h.Register(c), "phone")
}

func TestAgentHandler_Register_Conflict(t *testing.T) {
	stub := &stubAgentService{
		registerFn: func(context.Context, ports.RegisterAgentInput) (*domain.Agent, error) {
			return nil, domain.ErrAgentExists
		},
	}
	h := NewAgentHandler(stub, &stubDeliveryService{}, &stubQueue{})
	c, _ := newContext(http.MethodPost, "/delivery/agent/register",
		`{"name":"Chidi","phone":"+2348099990000","vehicleType":"bike","maxCapacityKg":20}`,
		map[string]string{"role": domain.RoleAgent, "user_id": "user-7"})
	if err := h.Register(c); !errors.Is(err, domain.ErrAgentExists) {
		t.Fatalf("expected ErrAgentExists, got %v", err)
	}
}

func TestAgentHandler_SetAvailability(t *testing.T) {
	var gotUser string
	var gotAvailable bool
	stub := &stubAgentService{
		availabilityFn: func(_ context.Context, userID string, available bool) (*domain.Agent, error) {
			gotUser, gotAvailable = userID, available
			a := sampleAgent()
			a.IsAvailable = available
			return a, nil
		},
	}
	h := NewAgentHandler(stub, &stubDeliveryService{}, &stubQueue{})

	c, _ := newContext(http.MethodPost, "/delivery/agent/availability", `{}`, agentClaims())
	requireValidationField(t, h.SetAvailability(c), "available")

	c, rec := newContext(http.MethodPost, "/delivery/agent/availability", `{"available":false}`, agentClaims())
	if err := h.SetAvailability(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotUser != "user-7" || gotAvailable {
		t.Fatalf("unexpected service call user=%s available=%v", gotUser, gotAvailable)
	}
	if decodeBody(t, rec)["isAvailable"] != false {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAgentHandler_Deliveries(t *testing.T) {
	var gotAgent, gotStatus string
	stub := &stubDeliveryService{
		agentDeliveryFn: func(_ context.Context, agentID, status string) ([]*domain.Shipment, error) {
			gotAgent, gotStatus = agentID, status
			return nil, nil
		},
	}
	h := NewAgentHandler(&stubAgentService{}, stub, &stubQueue{})
	c, rec := newContext(http.MethodGet, "/delivery/agent/deliveries?status=in_transit", "", agentClaims())
	if err := h.Deliveries(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotAgent != "agent-7" || gotStatus != "in_transit" {
		t.Fatalf("unexpected service call agent=%s status=%s", gotAgent, gotStatus)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}
