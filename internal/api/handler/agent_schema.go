package handler

import "time"

type registerAgentRequest struct {
	Name          string  `json:"name"          validate:"required,max=120"`
	Phone         string  `json:"phone"         validate:"required,min=7,max=20"`
	VehicleType   string  `json:"vehicleType"   validate:"required"`
	MaxCapacityKg float64 `json:"maxCapacityKg" validate:"gt=0"`
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type locationRequest struct {
	Latitude   *float64   `json:"latitude"   validate:"required,latitude"`
	Longitude  *float64   `json:"longitude"  validate:"required,longitude"`
	Accuracy   float64    `json:"accuracy"   validate:"gte=0"`
	RecordedAt *time.Time `json:"recordedAt"`
}

type assignRequest struct {
	AgentID string `json:"agentId" validate:"required"`
}

type agentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type resolveCODRequest struct {
	Note string `json:"note" validate:"required,max=500"`
}

type rateCardRequest struct {
	BaseFee        float64 `json:"baseFee"        validate:"gte=0"`
	PerKmRate      float64 `json:"perKmRate"      validate:"gte=0"`
	FreeDistanceKm float64 `json:"freeDistanceKm" validate:"gte=0"`
}

type zoneRequest struct {
	Name     string              `json:"name"     validate:"required"`
	Type     string              `json:"type"     validate:"omitempty,oneof=area lga"`
	Centroid *coordinatesRequest `json:"centroid" validate:"required"`
	RadiusKm float64             `json:"radiusKm" validate:"gt=0"`
	Rates    *rateCardRequest    `json:"rates"    validate:"required"`
	Override *rateCardRequest    `json:"override"`
	IsActive *bool               `json:"isActive"`
}

type suspendZoneRequest struct {
	Reason string `json:"reason" validate:"required,max=300"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type agentResponse struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"userId"`
	Name                string            `json:"name"`
	Phone               string            `json:"phone"`
	VehicleType         string            `json:"vehicleType"`
	MaxCapacityKg       float64           `json:"maxCapacityKg"`
	Status              string            `json:"status"`
	IsVerified          bool              `json:"isVerified"`
	IsAvailable         bool              `json:"isAvailable"`
	CurrentLocation     *locationResponse `json:"currentLocation,omitempty"`
	ActiveShipmentID    string            `json:"activeShipmentId,omitempty"`
	TotalDeliveries     int               `json:"totalDeliveries"`
	CompletedDeliveries int               `json:"completedDeliveries"`
	FailedDeliveries    int               `json:"failedDeliveries"`
	Rating              float64           `json:"rating"`
	Earnings            float64           `json:"earnings"`
	LastActiveAt        time.Time         `json:"lastActiveAt"`
	CreatedAt           time.Time         `json:"createdAt"`
}

type rateCardResponse struct {
	BaseFee        float64 `json:"baseFee"`
	PerKmRate      float64 `json:"perKmRate"`
	FreeDistanceKm float64 `json:"freeDistanceKm"`
}

type zoneResponse struct {
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	Type             string              `json:"type"`
	Centroid         coordinatesResponse `json:"centroid"`
	RadiusKm         float64             `json:"radiusKm"`
	Rates            rateCardResponse    `json:"rates"`
	Override         *rateCardResponse   `json:"override,omitempty"`
	IsActive         bool                `json:"isActive"`
	IsSuspended      bool                `json:"isSuspended"`
	SuspensionReason string              `json:"suspensionReason,omitempty"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}
