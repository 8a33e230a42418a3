package ports

import (
	"context"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// ShipmentFilter carries all query parameters for listing shipments.
type ShipmentFilter struct {
	Status       domain.ShipmentStatus // optional
	DeliveryType domain.DeliveryType   // optional
	AgentID      string                // optional
	CustomerID   string                // optional
	Search       string                // optional: prefix match on tracking_number
	DateFrom     time.Time             // optional: created_at >= DateFrom
	DateTo       time.Time             // optional: created_at <= DateTo
	OldestFirst  bool                  // default is newest first
	Page         int                   // 1-based
	Limit        int                   // max rows per page (capped at 100 by service)
}

// TrackingPatch is a position refresh for an in-flight shipment.
type TrackingPatch struct {
	Location                domain.GeoPoint
	DistanceToDestinationKm float64
	ETAMinutes              int
	EstimatedDelivery       time.Time
}

// ShipmentRepository defines persistence operations for shipments. Every write
// is a single-document conditional update.
type ShipmentRepository interface {
	// Create inserts s. Returns domain.ErrDuplicateShipment when the tracking
	// number or the (customer, idempotency key) pair already exists.
	Create(ctx context.Context, s *domain.Shipment) error
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	FindByIdempotencyKey(ctx context.Context, customerID, key string) (*domain.Shipment, error)

	// ApplyStatusChange writes change only if the stored version still equals
	// expectedVersion, returning the updated shipment. A mismatch yields
	// domain.ErrVersionConflict.
	ApplyStatusChange(ctx context.Context, id string, expectedVersion int64, change *domain.StatusChange) (*domain.Shipment, error)

	// ResolveCOD closes an open COD discrepancy and appends event. Returns
	// domain.ErrVersionConflict when the shipment moved on meanwhile.
	ResolveCOD(ctx context.Context, id string, expectedVersion int64, resolution domain.CODResolution, event domain.TrackingEvent) (*domain.Shipment, error)

	// UpdateTracking stores a newer position for a moving shipment. It reports
	// false when the stored position is already as recent or the shipment is
	// no longer moving.
	UpdateTracking(ctx context.Context, id string, patch TrackingPatch) (bool, error)

	// MarkNearby appends event and flags the shipment the first time only.
	MarkNearby(ctx context.Context, id string, event domain.TrackingEvent) (bool, error)

	// ClearEffect removes a settled agent effect from the pending list.
	ClearEffect(ctx context.Context, shipmentID, effectID string) error
	ListWithPendingEffects(ctx context.Context, limit int) ([]*domain.Shipment, error)

	// ListByAgent returns the shipments assigned to agentID in any of statuses
	// (all statuses when empty).
	ListByAgent(ctx context.Context, agentID string, statuses []domain.ShipmentStatus) ([]*domain.Shipment, error)

	// List returns a page of shipments matching filter and the total count.
	List(ctx context.Context, filter ShipmentFilter) ([]*domain.Shipment, int64, error)
	CountByStatus(ctx context.Context) (map[domain.ShipmentStatus]int64, error)
}
