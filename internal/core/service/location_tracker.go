package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

// TrackingSettings tunes ETA estimation.
type TrackingSettings struct {
	AvgSpeedKmh float64
	NearbyKm    float64
}

// LocationTracker applies agent position reports. Reports are ordered by their
// device timestamp, so a late report never overwrites a newer one.
type LocationTracker struct {
	shipments ports.ShipmentRepository
	agents    ports.AgentRepository
	dedup     ports.LocationDedup
	feed      ports.TrackingFeed
	settings  TrackingSettings
	log       zerolog.Logger
	now       func() time.Time
}

// NewLocationTracker builds a tracker. dedup and feed may be nil.
func NewLocationTracker(
	shipments ports.ShipmentRepository,
	agents ports.AgentRepository,
	dedup ports.LocationDedup,
	feed ports.TrackingFeed,
	settings TrackingSettings,
	log zerolog.Logger,
) *LocationTracker {
	if settings.AvgSpeedKmh <= 0 {
		settings.AvgSpeedKmh = 30
	}
	return &LocationTracker{
		shipments: shipments,
		agents:    agents,
		dedup:     dedup,
		feed:      feed,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
}

// Report records the agent position and refreshes the agent's single moving
// shipment, if any. Agents without a moving shipment only update themselves.
func (t *LocationTracker) Report(ctx context.Context, r ports.LocationReport) (*ports.LocationResult, error) {
	start := time.Now()
	defer func() { metrics.LocationProcessingDuration.Observe(time.Since(start).Seconds()) }()

	res, err := t.report(ctx, r)
	switch {
	case err != nil:
		metrics.LocationReportsTotal.WithLabelValues("error").Inc()
	case res.Duplicate:
		metrics.LocationReportsTotal.WithLabelValues("duplicate").Inc()
	case res.Stale:
		metrics.LocationReportsTotal.WithLabelValues("stale").Inc()
	default:
		metrics.LocationReportsTotal.WithLabelValues("applied").Inc()
	}
	return res, err
}

func (t *LocationTracker) report(ctx context.Context, r ports.LocationReport) (*ports.LocationResult, error) {
	if r.AgentID == "" {
		return nil, domain.NewValidationError("agent_id", "agent is required")
	}
	point := domain.Coordinates{Lat: r.Lat, Lng: r.Lng}
	if !point.Valid() {
		return nil, domain.NewValidationError("location", "coordinates out of range")
	}
	ts := r.RecordedAt.UTC()
	if r.RecordedAt.IsZero() {
		ts = t.now().UTC()
	}

	if t.dedup != nil {
		dup, err := t.dedup.IsDuplicate(ctx, r.AgentID, ts)
		if err != nil {
			t.log.Warn().Err(err).Str("agent_id", r.AgentID).Msg("dedup check failed, processing anyway")
		} else if dup {
			return &ports.LocationResult{Duplicate: true}, nil
		}
	}

	geo := domain.GeoPoint{Lat: r.Lat, Lng: r.Lng, AccuracyM: r.AccuracyM, RecordedAt: ts}
	applied, err := t.agents.UpdateLocation(ctx, r.AgentID, geo)
	if err != nil {
		return nil, fmt.Errorf("update agent location: %w", err)
	}
	if !applied {
		t.log.Debug().Str("agent_id", r.AgentID).Time("recorded_at", ts).Msg("stale location report discarded")
		return &ports.LocationResult{Stale: true}, nil
	}
	if t.dedup != nil {
		if err := t.dedup.Mark(ctx, r.AgentID, ts); err != nil {
			t.log.Warn().Err(err).Str("agent_id", r.AgentID).Msg("failed to set dedup key")
		}
	}

	res := &ports.LocationResult{Applied: true}
	active, err := t.shipments.ListByAgent(ctx, r.AgentID, domain.MovingStatuses())
	if err != nil {
		return nil, fmt.Errorf("list active shipments: %w", err)
	}
	if len(active) != 1 {
		if len(active) > 1 {
			t.log.Warn().Str("agent_id", r.AgentID).Int("shipments", len(active)).Msg("agent has several moving shipments, skipping shipment tracking")
		}
		return res, nil
	}

	s := active[0]
	res.ShipmentID = s.ID
	distance := domain.DistanceKm(point, s.Delivery.Coordinates)
	eta := t.etaMinutes(distance)
	patch := ports.TrackingPatch{
		Location:                geo,
		DistanceToDestinationKm: round2(distance),
		ETAMinutes:              eta,
		EstimatedDelivery:       ts.Add(time.Duration(eta) * time.Minute),
	}
	updated, err := t.shipments.UpdateTracking(ctx, s.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update shipment tracking: %w", err)
	}
	if !updated {
		return res, nil
	}

	s.CurrentLocation = &patch.Location
	s.DistanceToDestinationKm = &patch.DistanceToDestinationKm
	s.ETAMinutes = &patch.ETAMinutes
	s.EstimatedDelivery = patch.EstimatedDelivery
	s.UpdatedAt = ts

	var nearby *domain.TrackingEvent
	if t.settings.NearbyKm > 0 && distance <= t.settings.NearbyKm && !s.NearbyNotified {
		ev := domain.TrackingEvent{
			ID:          uuid.NewString(),
			Type:        domain.EventAgentNearby,
			Status:      s.Status,
			Description: fmt.Sprintf("Delivery agent is %.1f km away", distance),
			Location:    &point,
			ActorID:     r.AgentID,
			RecordedAt:  ts,
		}
		marked, err := t.shipments.MarkNearby(ctx, s.ID, ev)
		if err != nil {
			t.log.Warn().Err(err).Str("shipment_id", s.ID).Msg("failed to record nearby event")
		} else if marked {
			nearby = &ev
			t.log.Info().Str("shipment_id", s.ID).Str("tracking_number", s.TrackingNumber).Msg("agent nearby")
		}
	}

	publish(ctx, t.feed, t.log, s, nearby)
	res.Tracking = &domain.TrackingUpdate{
		TrackingNumber:          s.TrackingNumber,
		Status:                  s.Status,
		Location:                s.CurrentLocation,
		DistanceToDestinationKm: s.DistanceToDestinationKm,
		ETAMinutes:              s.ETAMinutes,
		EstimatedDelivery:       s.EstimatedDelivery,
		Event:                   publicEvent(nearby),
		At:                      ts,
	}
	return res, nil
}

func (t *LocationTracker) etaMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm / t.settings.AvgSpeedKmh * 60))
}
