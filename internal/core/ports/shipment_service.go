package ports

import (
	"context"
	"io"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// CoordinatesInput holds geographic coordinates.
type CoordinatesInput struct {
	Lat float64
	Lng float64
}

func (c CoordinatesInput) Domain() domain.Coordinates {
	return domain.Coordinates{Lat: c.Lat, Lng: c.Lng}
}

// AddressInput holds a physical location and its contact.
type AddressInput struct {
	Line         string
	City         string
	State        string
	Country      string
	ContactName  string
	ContactPhone string
	Coordinates  CoordinatesInput
}

// QuoteInput carries everything the fee engine prices on.
type QuoteInput struct {
	Pickup       CoordinatesInput
	Delivery     CoordinatesInput
	WeightKg     float64
	PackageValue float64
	DeliveryType string
	COD          bool
	ScheduledFor *time.Time
}

// Rate is a single priced delivery option.
type Rate struct {
	Carrier        string
	DeliveryType   domain.DeliveryType
	Fee            float64
	Currency       string
	DistanceKm     float64
	EstimatedHours float64
	EstimatedDays  int
	Breakdown      domain.FeeBreakdown
}

// QuoteResult is a ranked list of rates. Success is false, with an empty list,
// when no zone serves the route.
type QuoteResult struct {
	Success bool
	Message string
	Rates   []Rate
}

// CreateShipmentInput carries all data needed to create a new shipment.
type CreateShipmentInput struct {
	CustomerID     string
	IdempotencyKey string
	Pickup         AddressInput
	Delivery       AddressInput
	WeightKg       float64
	PackageValue   float64
	Fragile        bool
	Description    string
	DeliveryType   string
	CODAmount      *float64
	ScheduledFor   *time.Time
}

// Assignment reports what dispatch did for a newly created shipment.
type Assignment string

const (
	AssignmentAssigned    Assignment = "assigned"
	AssignmentUnavailable Assignment = "unavailable"
)

// CreateShipmentResult is returned by the service after creating a shipment.
type CreateShipmentResult struct {
	Shipment *domain.Shipment
	// AlreadyExisted is true when the Idempotency-Key matched an existing shipment.
	AlreadyExisted bool
	Assignment     Assignment
}

// AgentContact is the redacted agent card shown to customers.
type AgentContact struct {
	Name        string
	Phone       string
	VehicleType domain.VehicleType
}

// TrackingEventView is a public audit entry.
type TrackingEventView struct {
	Type        domain.EventType
	Status      domain.ShipmentStatus
	Description string
	Location    *domain.Coordinates
	RecordedAt  time.Time
}

// TrackingView is the customer-facing projection of a shipment. It never
// carries internal identifiers.
type TrackingView struct {
	TrackingNumber          string
	Status                  domain.ShipmentStatus
	DeliveryType            domain.DeliveryType
	PickupCity              string
	DeliveryCity            string
	EstimatedDelivery       time.Time
	DeliveredAt             *time.Time
	CurrentLocation         *domain.GeoPoint
	DistanceToDestinationKm *float64
	ETAMinutes              *int
	Agent                   *AgentContact
	Events                  []TrackingEventView
}

// TransitionRequest asks the lifecycle engine to move a shipment.
type TransitionRequest struct {
	ShipmentID    string
	Status        string
	Actor         domain.Actor
	Notes         string
	Location      *CoordinatesInput
	DeliveryProof string
	FailedReason  string
	CODCollected  *float64
}

// EffectStatus tells whether agent bookkeeping of a transition was settled.
type EffectStatus string

const (
	EffectNone    EffectStatus = "none"
	EffectApplied EffectStatus = "applied"
	EffectPending EffectStatus = "pending"
)

// TransitionOutcome separates the primary transition from its side effect.
// A pending effect is retried by the reconciler.
type TransitionOutcome struct {
	Shipment    *domain.Shipment
	Event       *domain.TrackingEvent
	Replayed    bool
	Effect      EffectStatus
	EffectError string
}

// ListShipmentsInput carries all parameters for the admin list endpoint.
type ListShipmentsInput struct {
	Status       string
	DeliveryType string
	AgentID      string
	CustomerID   string
	Search       string
	DateFrom     time.Time
	DateTo       time.Time
	Page         int
	Limit        int
}

// ShipmentPage is returned by ListShipments.
type ShipmentPage struct {
	Items      []*domain.Shipment
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// Analytics summarises shipment outcomes.
type Analytics struct {
	Total        int64
	Delivered    int64
	Failed       int64
	Cancelled    int64
	Returned     int64
	InFlight     int64
	Pending      int64
	DeliveryRate float64
	ByStatus     map[domain.ShipmentStatus]int64
}

// ProofUpload is a delivery photo sent by the assigned agent.
type ProofUpload struct {
	ShipmentID  string
	Actor       domain.Actor
	Filename    string
	ContentType string
	Body        io.Reader
}

// DeliveryService defines use-case operations for shipments.
type DeliveryService interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*CreateShipmentResult, error)
	TrackByNumber(ctx context.Context, trackingNumber string) (*TrackingView, error)
	TrackByID(ctx context.Context, id string, actor domain.Actor) (*TrackingView, error)
	UpdateStatus(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error)
	Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (*TransitionOutcome, error)
	AgentDeliveries(ctx context.Context, agentID, status string) ([]*domain.Shipment, error)
	ListShipments(ctx context.Context, input ListShipmentsInput) (*ShipmentPage, error)
	Analytics(ctx context.Context) (*Analytics, error)
	AssignAgent(ctx context.Context, shipmentID, agentID string, actor domain.Actor) (*domain.Shipment, error)
	DispatchPending(ctx context.Context) (int, error)
	ResolveCOD(ctx context.Context, shipmentID string, actor domain.Actor, note string) (*domain.Shipment, error)
	UploadProof(ctx context.Context, upload ProofUpload) (string, error)
}
