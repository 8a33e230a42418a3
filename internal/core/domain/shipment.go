package domain

import (
	"strings"
	"time"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "PENDING"
	StatusAssigned       ShipmentStatus = "ASSIGNED"
	StatusPickedUp       ShipmentStatus = "PICKED_UP"
	StatusInTransit      ShipmentStatus = "IN_TRANSIT"
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      ShipmentStatus = "DELIVERED"
	StatusFailed         ShipmentStatus = "FAILED"
	StatusCancelled      ShipmentStatus = "CANCELLED"
	StatusReturning      ShipmentStatus = "RETURNING"
	StatusReturned       ShipmentStatus = "RETURNED"
)

// statusOrder is the lifecycle order used when sorting by status.
var statusOrder = []ShipmentStatus{
	StatusPending,
	StatusAssigned,
	StatusPickedUp,
	StatusInTransit,
	StatusOutForDelivery,
	StatusFailed,
	StatusReturning,
	StatusDelivered,
	StatusReturned,
	StatusCancelled,
}

// validTransitions is the single source of truth for the shipment state machine.
var validTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusPending:        {StatusAssigned, StatusCancelled},
	StatusAssigned:       {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusInTransit, StatusFailed},
	StatusInTransit:      {StatusOutForDelivery, StatusFailed},
	StatusOutForDelivery: {StatusDelivered, StatusFailed},
	StatusFailed:         {StatusReturning, StatusPickedUp},
	StatusReturning:      {StatusReturned},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s ShipmentStatus) IsTerminal() bool {
	return s.Valid() && len(validTransitions[s]) == 0
}

// IsMoving reports whether the parcel is physically with the agent.
func (s ShipmentStatus) IsMoving() bool {
	switch s {
	case StatusPickedUp, StatusInTransit, StatusOutForDelivery:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s ShipmentStatus) Valid() bool {
	return s.Ordinal() >= 0
}

// Ordinal returns the lifecycle position of s, or -1 when unknown.
func (s ShipmentStatus) Ordinal() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []ShipmentStatus {
	out := make([]ShipmentStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// MovingStatuses are the statuses in which location reports update the shipment.
func MovingStatuses() []ShipmentStatus {
	return []ShipmentStatus{StatusPickedUp, StatusInTransit, StatusOutForDelivery}
}

// ParseShipmentStatus accepts any casing and "-" or " " separators.
func ParseShipmentStatus(raw string) (ShipmentStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := ShipmentStatus(norm)
	if !s.Valid() {
		return "", NewValidationError("status", "unknown shipment status "+raw)
	}
	return s, nil
}

// DeliveryType selects the service level, which drives price multiplier and SLA.
type DeliveryType string

const (
	DeliveryStandard  DeliveryType = "STANDARD"
	DeliveryExpress   DeliveryType = "EXPRESS"
	DeliverySameDay   DeliveryType = "SAME_DAY"
	DeliveryNextDay   DeliveryType = "NEXT_DAY"
	DeliveryScheduled DeliveryType = "SCHEDULED"
)

// ParseDeliveryType normalises raw and falls back to STANDARD for unknown values.
func ParseDeliveryType(raw string) DeliveryType {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch t := DeliveryType(norm); t {
	case DeliveryStandard, DeliveryExpress, DeliverySameDay, DeliveryNextDay, DeliveryScheduled:
		return t
	}
	return DeliveryStandard
}

// Address represents a pickup or drop-off point with its contact.
type Address struct {
	Line         string      `json:"line" bson:"line"`
	City         string      `json:"city" bson:"city"`
	State        string      `json:"state" bson:"state"`
	Country      string      `json:"country" bson:"country"`
	ContactName  string      `json:"contact_name" bson:"contact_name"`
	ContactPhone string      `json:"contact_phone" bson:"contact_phone"`
	Coordinates  Coordinates `json:"coordinates" bson:"coordinates"`
}

// FeeBreakdown records how DeliveryFee was computed.
type FeeBreakdown struct {
	ZoneCode           string  `json:"zone_code" bson:"zone_code"`
	DistanceKm         float64 `json:"distance_km" bson:"distance_km"`
	BillableDistanceKm float64 `json:"billable_distance_km" bson:"billable_distance_km"`
	Base               float64 `json:"base" bson:"base"`
	WeightSurcharge    float64 `json:"weight_surcharge" bson:"weight_surcharge"`
	Multiplier         float64 `json:"multiplier" bson:"multiplier"`
	CODFee             float64 `json:"cod_fee" bson:"cod_fee"`
	Subtotal           float64 `json:"subtotal" bson:"subtotal"`
	PlatformFee        float64 `json:"platform_fee" bson:"platform_fee"`
	Total              float64 `json:"total" bson:"total"`
}

// CODRecord is the cash collected at handoff, set once on delivery.
type CODRecord struct {
	Expected    float64    `json:"expected" bson:"expected"`
	Collected   float64    `json:"collected" bson:"collected"`
	CollectedAt time.Time  `json:"collected_at" bson:"collected_at"`
	Discrepancy bool       `json:"discrepancy" bson:"discrepancy"`
	Resolved    bool       `json:"resolved" bson:"resolved"`
	ResolvedBy  string     `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	Note        string     `json:"note,omitempty" bson:"note,omitempty"`
}

// Shipment is the core aggregate root.
type Shipment struct {
	ID                      string          `json:"id" bson:"_id"`
	TrackingNumber          string          `json:"tracking_number" bson:"tracking_number"`
	CustomerID              string          `json:"customer_id" bson:"customer_id"`
	Status                  ShipmentStatus  `json:"status" bson:"status"`
	DeliveryType            DeliveryType    `json:"delivery_type" bson:"delivery_type"`
	Pickup                  Address         `json:"pickup_address" bson:"pickup_address"`
	Delivery                Address         `json:"delivery_address" bson:"delivery_address"`
	WeightKg                float64         `json:"weight_kg" bson:"weight_kg"`
	PackageValue            float64         `json:"package_value" bson:"package_value"`
	Fragile                 bool            `json:"fragile" bson:"fragile"`
	Description             string          `json:"description" bson:"description"`
	CODAmount               *float64        `json:"cod_amount,omitempty" bson:"cod_amount,omitempty"`
	COD                     *CODRecord      `json:"cod,omitempty" bson:"cod,omitempty"`
	DeliveryFee             float64         `json:"delivery_fee" bson:"delivery_fee"`
	Currency                string          `json:"currency" bson:"currency"`
	Fee                     FeeBreakdown    `json:"fee" bson:"fee"`
	AgentID                 string          `json:"agent_id,omitempty" bson:"agent_id"`
	CurrentLocation         *GeoPoint       `json:"current_location,omitempty" bson:"current_location,omitempty"`
	DistanceToDestinationKm *float64        `json:"distance_to_destination_km,omitempty" bson:"distance_to_destination_km,omitempty"`
	ETAMinutes              *int            `json:"eta_minutes,omitempty" bson:"eta_minutes,omitempty"`
	NearbyNotified          bool            `json:"-" bson:"nearby_notified"`
	ScheduledFor            *time.Time      `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	EstimatedDelivery       time.Time       `json:"estimated_delivery" bson:"estimated_delivery"`
	DeliveredAt             *time.Time      `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	DeliveryProof           string          `json:"delivery_proof,omitempty" bson:"delivery_proof,omitempty"`
	FailedReason            string          `json:"failed_reason,omitempty" bson:"failed_reason,omitempty"`
	Events                  []TrackingEvent `json:"events" bson:"events"`
	PendingEffects          []AgentEffect   `json:"-" bson:"pending_effects"`
	IdempotencyKey          string          `json:"-" bson:"idempotency_key,omitempty"`
	Version                 int64           `json:"version" bson:"version"`
	CreatedAt               time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at" bson:"updated_at"`
}

// HasCOD reports whether cash is expected at handoff.
func (s *Shipment) HasCOD() bool {
	return s.CODAmount != nil
}
