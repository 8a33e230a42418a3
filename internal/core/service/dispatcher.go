package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

// maxCASAttempts bounds the re-read and retry loop on version conflicts.
const maxCASAttempts = 4

const systemActor = "system"

// Dispatcher reserves agents for pending shipments. The agent claim is a
// conditional write on the agent, followed by a version checked write on the
// shipment; when the second write fails the claim is released.
type Dispatcher struct {
	shipments ports.ShipmentRepository
	agents    ports.AgentRepository
	feed      ports.TrackingFeed
	log       zerolog.Logger
	now       func() time.Time
}

func NewDispatcher(shipments ports.ShipmentRepository, agents ports.AgentRepository, feed ports.TrackingFeed, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{shipments: shipments, agents: agents, feed: feed, log: log, now: time.Now}
}

// Assign claims the least loaded eligible agent for s. It returns
// domain.ErrNoAgentAvailable, leaving s PENDING, when nobody can take it.
func (d *Dispatcher) Assign(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error) {
	if s.Status != domain.StatusPending {
		return nil, &domain.InvalidTransitionError{From: s.Status, To: domain.StatusAssigned}
	}
	agent, err := d.agents.ClaimIdle(ctx, s.ID, s.WeightKg, d.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNoAgentAvailable) {
			metrics.DispatchTotal.WithLabelValues("no_agent").Inc()
			return s, err
		}
		metrics.DispatchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("claim agent: %w", err)
	}
	return d.bind(ctx, s, agent, systemActor)
}

// AssignTo reserves a specific agent, typically on an admin request.
func (d *Dispatcher) AssignTo(ctx context.Context, shipmentID, agentID, actorID string) (*domain.Shipment, error) {
	s, err := d.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if s.Status != domain.StatusPending {
		return nil, &domain.InvalidTransitionError{From: s.Status, To: domain.StatusAssigned}
	}
	agent, err := d.agents.Claim(ctx, agentID, s.ID, s.WeightKg, d.now().UTC())
	if err != nil {
		metrics.DispatchTotal.WithLabelValues("no_agent").Inc()
		return nil, err
	}
	return d.bind(ctx, s, agent, actorID)
}

// DispatchPending assigns agents to the oldest pending shipments until the
// pool runs dry. It returns how many shipments were assigned.
func (d *Dispatcher) DispatchPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	pending, _, err := d.shipments.List(ctx, ports.ShipmentFilter{
		Status:      domain.StatusPending,
		OldestFirst: true,
		Page:        1,
		Limit:       limit,
	})
	if err != nil {
		return 0, fmt.Errorf("list pending shipments: %w", err)
	}

	assigned := 0
	for _, s := range pending {
		if _, err := d.Assign(ctx, s); err != nil {
			if errors.Is(err, domain.ErrNoAgentAvailable) {
				break
			}
			d.log.Warn().Err(err).Str("shipment_id", s.ID).Msg("dispatch of pending shipment failed")
			continue
		}
		assigned++
	}
	if assigned > 0 {
		d.log.Info().Int("assigned", assigned).Int("pending", len(pending)).Msg("pending shipments dispatched")
	}
	return assigned, nil
}

func (d *Dispatcher) bind(ctx context.Context, s *domain.Shipment, agent *domain.Agent, actorID string) (*domain.Shipment, error) {
	shipmentID := s.ID
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		change, err := s.PlanTransition(domain.StatusAssigned, domain.TransitionInput{
			EventID: uuid.NewString(),
			ActorID: actorID,
			AgentID: agent.ID,
			At:      d.now(),
		})
		if err != nil {
			d.release(ctx, agent.ID, shipmentID)
			metrics.DispatchTotal.WithLabelValues("conflict").Inc()
			return nil, err
		}

		updated, err := d.shipments.ApplyStatusChange(ctx, shipmentID, s.Version, change)
		if err == nil {
			metrics.DispatchTotal.WithLabelValues("assigned").Inc()
			metrics.TransitionsTotal.WithLabelValues(string(change.From), string(change.To)).Inc()
			d.log.Info().
				Str("shipment_id", shipmentID).
				Str("tracking_number", updated.TrackingNumber).
				Str("agent_id", agent.ID).
				Msg("agent assigned")
			publish(ctx, d.feed, d.log, updated, &change.Event)
			return updated, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			d.release(ctx, agent.ID, shipmentID)
			metrics.DispatchTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("assign shipment: %w", err)
		}

		if s, err = d.shipments.FindByID(ctx, shipmentID); err != nil {
			d.release(ctx, agent.ID, shipmentID)
			return nil, err
		}
	}
	d.release(ctx, agent.ID, shipmentID)
	metrics.DispatchTotal.WithLabelValues("conflict").Inc()
	return nil, domain.ErrConcurrentUpdate
}

// release undoes a claim whose shipment write failed. A failure here leaves
// an orphaned claim that the reconciler frees later.
func (d *Dispatcher) release(ctx context.Context, agentID, shipmentID string) {
	if _, err := d.agents.ReleaseClaim(ctx, agentID, shipmentID); err != nil {
		d.log.Error().Err(err).Str("agent_id", agentID).Str("shipment_id", shipmentID).Msg("release of agent claim failed")
	}
}
