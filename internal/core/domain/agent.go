package domain

import (
	"strings"
	"time"
)

// AgentStatus is the administrative state of a delivery agent.
type AgentStatus string

const (
	AgentActive              AgentStatus = "active"
	AgentInactive            AgentStatus = "inactive"
	AgentSuspended           AgentStatus = "suspended"
	AgentPendingVerification AgentStatus = "pending_verification"
)

// ParseAgentStatus validates raw against the known agent statuses.
func ParseAgentStatus(raw string) (AgentStatus, error) {
	s := AgentStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case AgentActive, AgentInactive, AgentSuspended, AgentPendingVerification:
		return s, nil
	}
	return "", NewValidationError("status", "unknown agent status "+raw)
}

// VehicleType is the kind of vehicle an agent rides.
type VehicleType string

const (
	VehicleBike  VehicleType = "BIKE"
	VehicleCar   VehicleType = "CAR"
	VehicleVan   VehicleType = "VAN"
	VehicleTruck VehicleType = "TRUCK"
)

// ParseVehicleType validates raw against the known vehicle types.
func ParseVehicleType(raw string) (VehicleType, error) {
	v := VehicleType(strings.ToUpper(strings.TrimSpace(raw)))
	switch v {
	case VehicleBike, VehicleCar, VehicleVan, VehicleTruck:
		return v, nil
	}
	return "", NewValidationError("vehicle_type", "vehicle_type must be one of BIKE CAR VAN TRUCK")
}

// Agent is a delivery agent. ActiveShipmentID holds the single shipment the
// agent currently carries; empty means the agent is idle.
type Agent struct {
	ID                  string      `json:"id" bson:"_id"`
	UserID              string      `json:"user_id" bson:"user_id"`
	Name                string      `json:"name" bson:"name"`
	Phone               string      `json:"phone" bson:"phone"`
	VehicleType         VehicleType `json:"vehicle_type" bson:"vehicle_type"`
	MaxCapacityKg       float64     `json:"max_capacity_kg" bson:"max_capacity_kg"`
	Status              AgentStatus `json:"status" bson:"status"`
	IsVerified          bool        `json:"is_verified" bson:"is_verified"`
	IsAvailable         bool        `json:"is_available" bson:"is_available"`
	CurrentLocation     *GeoPoint   `json:"current_location,omitempty" bson:"current_location,omitempty"`
	ActiveShipmentID    string      `json:"active_shipment_id,omitempty" bson:"active_shipment_id"`
	TotalDeliveries     int         `json:"total_deliveries" bson:"total_deliveries"`
	CompletedDeliveries int         `json:"completed_deliveries" bson:"completed_deliveries"`
	FailedDeliveries    int         `json:"failed_deliveries" bson:"failed_deliveries"`
	Rating              float64     `json:"rating" bson:"rating"`
	Earnings            float64     `json:"earnings" bson:"earnings"`
	AppliedEffects      []string    `json:"-" bson:"applied_effects"`
	LastActiveAt        time.Time   `json:"last_active_at" bson:"last_active_at"`
	CreatedAt           time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" bson:"updated_at"`
}

// Dispatchable reports whether the agent may be claimed for a parcel of weightKg.
func (a *Agent) Dispatchable(weightKg float64) bool {
	return a.Status == AgentActive &&
		a.IsVerified &&
		a.IsAvailable &&
		a.ActiveShipmentID == "" &&
		a.MaxCapacityKg >= weightKg
}

// HasApplied reports whether the effect with id was already counted.
func (a *Agent) HasApplied(effectID string) bool {
	for _, id := range a.AppliedEffects {
		if id == effectID {
			return true
		}
	}
	return false
}
