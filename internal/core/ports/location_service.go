package ports

import (
	"context"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// LocationReport is a single position sample sent by an agent device.
type LocationReport struct {
	AgentID    string
	Lat        float64
	Lng        float64
	AccuracyM  float64
	RecordedAt time.Time
}

// LocationResult describes what a report changed.
type LocationResult struct {
	Applied    bool // agent position was updated
	Duplicate  bool // same report seen before
	Stale      bool // older than the stored position
	ShipmentID string
	Tracking   *domain.TrackingUpdate
}

// LocationService applies agent position reports.
type LocationService interface {
	Report(ctx context.Context, report LocationReport) (*LocationResult, error)
}
