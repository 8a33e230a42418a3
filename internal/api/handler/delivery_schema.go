package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// --- Request types ---

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type addressRequest struct {
	Address      string              `json:"address"      validate:"required"`
	City         string              `json:"city"         validate:"required"`
	State        string              `json:"state"`
	Country      string              `json:"country"`
	ContactName  string              `json:"contactName"`
	ContactPhone string              `json:"contactPhone"`
	Coordinates  *coordinatesRequest `json:"coordinates"  validate:"required"`
}

type quoteRequest struct {
	Pickup       *coordinatesRequest `json:"pickup"       validate:"required"`
	Delivery     *coordinatesRequest `json:"delivery"     validate:"required"`
	Weight       float64             `json:"weight"`
	PackageValue *float64            `json:"packageValue" validate:"required,gte=0"`
	DeliveryType string              `json:"deliveryType"`
	COD          bool                `json:"cod"`
	ScheduledFor *time.Time          `json:"scheduledFor"`
}

type createShipmentRequest struct {
	PickupAddress   *addressRequest `json:"pickupAddress"   validate:"required"`
	DeliveryAddress *addressRequest `json:"deliveryAddress" validate:"required"`
	Weight          float64         `json:"weight"`
	PackageValue    float64         `json:"packageValue"    validate:"gte=0"`
	Fragile         bool            `json:"fragile"`
	Description     string          `json:"description"     validate:"max=500"`
	DeliveryType    string          `json:"deliveryType"`
	CODAmount       *float64        `json:"codAmount"       validate:"omitempty,gte=0"`
	ScheduledFor    *time.Time      `json:"scheduledFor"`
}

type statusUpdateRequest struct {
	Status          string              `json:"status"          validate:"required"`
	Location        *coordinatesRequest `json:"location"`
	Notes           string              `json:"notes"           validate:"max=500"`
	ProofOfDelivery string              `json:"proofOfDelivery"`
	FailedReason    string              `json:"failedReason"`
	CODCollected    *float64            `json:"codCollected"    validate:"omitempty,gte=0"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// --- Response types ---

type coordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type locationResponse struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

type addressResponse struct {
	Address      string              `json:"address"`
	City         string              `json:"city"`
	State        string              `json:"state,omitempty"`
	Country      string              `json:"country,omitempty"`
	ContactName  string              `json:"contactName,omitempty"`
	ContactPhone string              `json:"contactPhone,omitempty"`
	Coordinates  coordinatesResponse `json:"coordinates"`
}

type feeBreakdownResponse struct {
	ZoneCode           string  `json:"zoneCode"`
	DistanceKm         float64 `json:"distanceKm"`
	BillableDistanceKm float64 `json:"billableDistanceKm"`
	Base               float64 `json:"base"`
	WeightSurcharge    float64 `json:"weightSurcharge"`
	Multiplier         float64 `json:"multiplier"`
	CODFee             float64 `json:"codFee"`
	Subtotal           float64 `json:"subtotal"`
	PlatformFee        float64 `json:"platformFee"`
	Total              float64 `json:"total"`
}

type rateResponse struct {
	Carrier        string               `json:"carrier"`
	DeliveryType   string               `json:"deliveryType"`
	Fee            float64              `json:"fee"`
	Currency       string               `json:"currency"`
	DistanceKm     float64              `json:"distanceKm"`
	EstimatedHours float64              `json:"estimatedHours"`
	EstimatedDays  int                  `json:"estimatedDays"`
	Breakdown      feeBreakdownResponse `json:"breakdown"`
}

type quoteResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Rates   []rateResponse `json:"rates"`
}

type createShipmentResponse struct {
	ID                string    `json:"id"`
	TrackingNumber    string    `json:"trackingNumber"`
	Status            string    `json:"status"`
	DeliveryFee       float64   `json:"deliveryFee"`
	Currency          string    `json:"currency"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	Assignment        string    `json:"assignment"`
	AgentID           string    `json:"agentId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type trackingEventResponse struct {
	Type        string               `json:"type"`
	Status      string               `json:"status"`
	Description string               `json:"description"`
	Location    *coordinatesResponse `json:"location,omitempty"`
	RecordedAt  time.Time            `json:"recordedAt"`
}

type agentContactResponse struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicleType"`
}

// trackingResponse is the customer-facing view; it carries no internal ids.
type trackingResponse struct {
	TrackingNumber          string                  `json:"trackingNumber"`
	Status                  string                  `json:"status"`
	DeliveryType            string                  `json:"deliveryType"`
	PickupCity              string                  `json:"pickupCity"`
	DeliveryCity            string                  `json:"deliveryCity"`
	EstimatedDelivery       time.Time               `json:"estimatedDelivery"`
	DeliveredAt             *time.Time              `json:"deliveredAt,omitempty"`
	CurrentLocation         *locationResponse       `json:"currentLocation,omitempty"`
	DistanceToDestinationKm *float64                `json:"distanceToDestinationKm,omitempty"`
	ETAMinutes              *int                    `json:"etaMinutes,omitempty"`
	Agent                   *agentContactResponse   `json:"agent,omitempty"`
	Events                  []trackingEventResponse `json:"events"`
}

type codResponse struct {
	Expected    float64    `json:"expected"`
	Collected   float64    `json:"collected"`
	CollectedAt time.Time  `json:"collectedAt"`
	Discrepancy bool       `json:"discrepancy"`
	Resolved    bool       `json:"resolved"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// shipmentResponse is the full record shown to the assigned agent and admins.
type shipmentResponse struct {
	ID                      string                  `json:"id"`
	TrackingNumber          string                  `json:"trackingNumber"`
	CustomerID              string                  `json:"customerId"`
	Status                  string                  `json:"status"`
	DeliveryType            string                  `json:"deliveryType"`
	PickupAddress           addressResponse         `json:"pickupAddress"`
	DeliveryAddress         addressResponse         `json:"deliveryAddress"`
	Weight                  float64                 `json:"weight"`
	PackageValue            float64                 `json:"packageValue"`
	Fragile                 bool                    `json:"fragile"`
	Description             string                  `json:"description,omitempty"`
	CODAmount               *float64                `json:"codAmount,omitempty"`
	COD                     *codResponse            `json:"cod,omitempty"`
	DeliveryFee             float64                 `json:"deliveryFee"`
	Currency                string                  `json:"currency"`
	Fee                     feeBreakdownResponse    `json:"fee"`
	AgentID                 string                  `json:"agentId,omitempty"`
	CurrentLocation         *locationResponse       `json:"currentLocation,omitempty"`
	DistanceToDestinationKm *float64                `json:"distanceToDestinationKm,omitempty"`
	ETAMinutes              *int                    `json:"etaMinutes,omitempty"`
	ScheduledFor            *time.Time              `json:"scheduledFor,omitempty"`
	EstimatedDelivery       time.Time               `json:"estimatedDelivery"`
	DeliveredAt             *time.Time              `json:"deliveredAt,omitempty"`
	ProofOfDelivery         string                  `json:"proofOfDelivery,omitempty"`
	FailedReason            string                  `json:"failedReason,omitempty"`
	Events                  []trackingEventResponse `json:"events"`
	Version                 int64                   `json:"version"`
	CreatedAt               time.Time               `json:"createdAt"`
	UpdatedAt               time.Time               `json:"updatedAt"`
}

type transitionResponse struct {
	Shipment    shipmentResponse       `json:"shipment"`
	Event       *trackingEventResponse `json:"event,omitempty"`
	Replayed    bool                   `json:"replayed"`
	AgentStats  string                 `json:"agentStats"`
	EffectError string                 `json:"agentStatsError,omitempty"`
}

type proofResponse struct {
	URL string `json:"url"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type listShipmentsResponse struct {
	Data       []shipmentResponse `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type analyticsResponse struct {
	Total        int64            `json:"total"`
	Delivered    int64            `json:"delivered"`
	Failed       int64            `json:"failed"`
	Cancelled    int64            `json:"cancelled"`
	Returned     int64            `json:"returned"`
	InFlight     int64            `json:"inFlight"`
	Pending      int64            `json:"pending"`
	DeliveryRate float64          `json:"deliveryRate"`
	ByStatus     map[string]int64 `json:"byStatus"`
}

type dispatchResponse struct {
	Assigned int `json:"assigned"`
}
