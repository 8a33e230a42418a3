package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

// Bookkeeper settles agent effects recorded on shipments. Every step is
// idempotent, so an effect may be settled any number of times.
type Bookkeeper struct {
	shipments ports.ShipmentRepository
	agents    ports.AgentRepository
	log       zerolog.Logger
}

func NewBookkeeper(shipments ports.ShipmentRepository, agents ports.AgentRepository, log zerolog.Logger) *Bookkeeper {
	return &Bookkeeper{shipments: shipments, agents: agents, log: log}
}

// Settle applies counters, releases the claim and clears the effect. On error
// the effect stays pending on the shipment.
func (b *Bookkeeper) Settle(ctx context.Context, e domain.AgentEffect) error {
	if e.HasStats() {
		applied, err := b.agents.ApplyStats(ctx, e)
		if err != nil {
			return b.pending(e, fmt.Errorf("apply agent stats: %w", err))
		}
		if !applied {
			b.log.Debug().Str("effect_id", e.ID).Str("agent_id", e.AgentID).Msg("agent stats already applied")
		}
	}
	if e.Release {
		if _, err := b.agents.ReleaseClaim(ctx, e.AgentID, e.ShipmentID); err != nil {
			return b.pending(e, fmt.Errorf("release agent: %w", err))
		}
	}
	if err := b.shipments.ClearEffect(ctx, e.ShipmentID, e.ID); err != nil {
		return b.pending(e, fmt.Errorf("clear effect: %w", err))
	}
	metrics.AgentEffectsTotal.WithLabelValues("applied").Inc()
	return nil
}

// SettleAll settles every pending effect of s and returns how many failed.
func (b *Bookkeeper) SettleAll(ctx context.Context, s *domain.Shipment) (settled, failed int) {
	for _, e := range s.PendingEffects {
		if err := b.Settle(ctx, e); err != nil {
			failed++
			continue
		}
		settled++
	}
	return settled, failed
}

func (b *Bookkeeper) pending(e domain.AgentEffect, err error) error {
	metrics.AgentEffectsTotal.WithLabelValues("pending").Inc()
	b.log.Warn().Err(err).
		Str("effect_id", e.ID).
		Str("agent_id", e.AgentID).
		Str("shipment_id", e.ShipmentID).
		Msg("agent effect left pending")
	return err
}
