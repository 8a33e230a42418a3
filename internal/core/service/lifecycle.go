package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

// LifecycleEngine validates and applies shipment status changes. Changes are
// serialized per shipment by a version compare-and-swap; the agent effect is
// stored in the same write and settled afterwards.
type LifecycleEngine struct {
	shipments  ports.ShipmentRepository
	bookkeeper *Bookkeeper
	feed       ports.TrackingFeed
	log        zerolog.Logger
	now        func() time.Time
}

func NewLifecycleEngine(shipments ports.ShipmentRepository, bookkeeper *Bookkeeper, feed ports.TrackingFeed, log zerolog.Logger) *LifecycleEngine {
	return &LifecycleEngine{shipments: shipments, bookkeeper: bookkeeper, feed: feed, log: log, now: time.Now}
}

// Transition moves a shipment to req.Status on behalf of req.Actor.
func (l *LifecycleEngine) Transition(ctx context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error) {
	out, err := l.transition(ctx, req)
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
	}
	return out, err
}

func (l *LifecycleEngine) transition(ctx context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error) {
	next, err := domain.ParseShipmentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if next == domain.StatusAssigned {
		return nil, domain.NewValidationError("status", "agents are assigned through dispatch")
	}

	var location *domain.Coordinates
	if req.Location != nil {
		c := req.Location.Domain()
		if !c.Valid() {
			return nil, domain.NewValidationError("location", "coordinates out of range")
		}
		location = &c
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		s, err := l.shipments.FindByID(ctx, req.ShipmentID)
		if err != nil {
			return nil, err
		}
		if err := authorize(req.Actor, s, next); err != nil {
			return nil, err
		}
		if s.Status == next {
			return l.replay(ctx, s), nil
		}

		change, err := s.PlanTransition(next, domain.TransitionInput{
			EventID:       uuid.NewString(),
			ActorID:       req.Actor.ID,
			Notes:         strings.TrimSpace(req.Notes),
			Location:      location,
			DeliveryProof: req.DeliveryProof,
			FailedReason:  strings.TrimSpace(req.FailedReason),
			CODCollected:  req.CODCollected,
			At:            l.now(),
		})
		if err != nil {
			return nil, err
		}

		updated, err := l.shipments.ApplyStatusChange(ctx, s.ID, s.Version, change)
		if errors.Is(err, domain.ErrVersionConflict) {
			l.log.Debug().Str("shipment_id", s.ID).Int("attempt", attempt+1).Msg("version conflict, retrying transition")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply transition: %w", err)
		}

		metrics.TransitionsTotal.WithLabelValues(string(change.From), string(change.To)).Inc()
		logEvt := l.log.Info()
		if change.COD != nil && change.COD.Discrepancy {
			logEvt = l.log.Warn().
				Float64("cod_expected", change.COD.Expected).
				Float64("cod_collected", change.COD.Collected)
		}
		logEvt.
			Str("shipment_id", s.ID).
			Str("tracking_number", s.TrackingNumber).
			Str("from", string(change.From)).
			Str("status", string(change.To)).
			Str("actor", req.Actor.Role).
			Msg("shipment status changed")

		out := &ports.TransitionOutcome{Shipment: updated, Event: &change.Event, Effect: ports.EffectNone}
		if change.Effect != nil {
			out.Effect = ports.EffectApplied
			if err := l.bookkeeper.Settle(ctx, *change.Effect); err != nil {
				out.Effect = ports.EffectPending
				out.EffectError = err.Error()
			} else {
				updated.PendingEffects = withoutEffect(updated.PendingEffects, change.Effect.ID)
			}
		}
		publish(ctx, l.feed, l.log, updated, &change.Event)
		return out, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

// replay answers a request for the status the shipment already has. No event
// is appended; effects left pending by the original call are retried.
func (l *LifecycleEngine) replay(ctx context.Context, s *domain.Shipment) *ports.TransitionOutcome {
	out := &ports.TransitionOutcome{Shipment: s, Replayed: true, Effect: ports.EffectNone}
	if len(s.PendingEffects) == 0 {
		return out
	}
	if _, failed := l.bookkeeper.SettleAll(ctx, s); failed > 0 {
		out.Effect = ports.EffectPending
		out.EffectError = "agent bookkeeping still pending"
		return out
	}
	s.PendingEffects = nil
	out.Effect = ports.EffectApplied
	return out
}

// authorize enforces who may request which change. Admins may do anything,
// agents only act on their own shipments and customers may only cancel
// shipments they own.
func authorize(actor domain.Actor, s *domain.Shipment, next domain.ShipmentStatus) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleAgent:
		if actor.ID == "" || s.AgentID != actor.ID {
			return domain.ErrForbidden
		}
		return nil
	case domain.RoleCustomer:
		if actor.ID == "" || s.CustomerID != actor.ID || next != domain.StatusCancelled {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}

func withoutEffect(effects []domain.AgentEffect, id string) []domain.AgentEffect {
	out := effects[:0:0]
	for _, e := range effects {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func transitionErrorReason(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return "conflict"
	case errors.As(err, &ve):
		return "validation"
	}
	return "error"
}
