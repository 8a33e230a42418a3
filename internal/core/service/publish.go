package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// publish pushes the current state of s to live subscribers. The feed is
// best effort; persisted state is the source of truth.
func publish(ctx context.Context, feed ports.TrackingFeed, log zerolog.Logger, s *domain.Shipment, ev *domain.TrackingEvent) {
	if feed == nil {
		return
	}
	update := domain.TrackingUpdate{
		TrackingNumber:          s.TrackingNumber,
		Status:                  s.Status,
		Location:                s.CurrentLocation,
		DistanceToDestinationKm: s.DistanceToDestinationKm,
		ETAMinutes:              s.ETAMinutes,
		EstimatedDelivery:       s.EstimatedDelivery,
		Event:                   publicEvent(ev),
		At:                      s.UpdatedAt,
	}
	if err := feed.Publish(ctx, update); err != nil {
		log.Warn().Err(err).Str("tracking_number", s.TrackingNumber).Msg("tracking publish failed")
	}
}

func publicEvent(ev *domain.TrackingEvent) *domain.TrackingEvent {
	if ev == nil {
		return nil
	}
	out := *ev
	out.ActorID = ""
	return &out
}
