package domain

import "time"

// EventType classifies entries of a shipment's audit trail.
type EventType string

const (
	EventCreated       EventType = "created"
	EventAssigned      EventType = "assigned"
	EventStatusChanged EventType = "status_changed"
	EventAgentNearby   EventType = "agent_nearby"
	EventCODResolved   EventType = "cod_resolved"
)

// TrackingEvent is an immutable audit entry; shipments only ever append them.
type TrackingEvent struct {
	ID          string         `json:"id" bson:"id"`
	Type        EventType      `json:"event_type" bson:"event_type"`
	Status      ShipmentStatus `json:"status" bson:"status"`
	Description string         `json:"description" bson:"description"`
	Location    *Coordinates   `json:"location,omitempty" bson:"location,omitempty"`
	ActorID     string         `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	RecordedAt  time.Time      `json:"recorded_at" bson:"recorded_at"`
}

// TrackingUpdate is what live subscribers of a shipment receive.
type TrackingUpdate struct {
	TrackingNumber          string         `json:"tracking_number"`
	Status                  ShipmentStatus `json:"status"`
	Location                *GeoPoint      `json:"location,omitempty"`
	DistanceToDestinationKm *float64       `json:"distance_to_destination_km,omitempty"`
	ETAMinutes              *int           `json:"eta_minutes,omitempty"`
	EstimatedDelivery       time.Time      `json:"estimated_delivery"`
	Event                   *TrackingEvent `json:"event,omitempty"`
	At                      time.Time      `json:"at"`
}

// AgentEffect is bookkeeping owed to an agent record by a shipment transition.
// ID is the originating event id and makes application idempotent.
type AgentEffect struct {
	ID             string  `json:"id" bson:"id"`
	AgentID        string  `json:"agent_id" bson:"agent_id"`
	ShipmentID     string  `json:"shipment_id" bson:"shipment_id"`
	TotalDelta     int     `json:"total_delta" bson:"total_delta"`
	CompletedDelta int     `json:"completed_delta" bson:"completed_delta"`
	FailedDelta    int     `json:"failed_delta" bson:"failed_delta"`
	Earnings       float64 `json:"earnings" bson:"earnings"`
	Release        bool    `json:"release" bson:"release"`
}

// HasStats reports whether the effect changes agent counters.
func (e AgentEffect) HasStats() bool {
	return e.TotalDelta != 0 || e.CompletedDelta != 0 || e.FailedDelta != 0 || e.Earnings != 0
}
