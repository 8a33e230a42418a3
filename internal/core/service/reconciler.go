package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

const (
	reconcileBatch = 100
	// claimGrace is how long a claim may sit on a still PENDING shipment
	// before it is considered orphaned by a failed dispatch.
	claimGrace = 2 * time.Minute
)

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	EffectsSettled int
	EffectsFailed  int
	ClaimsReleased int
	Dispatched     int
}

// Reconciler repairs what request handling could not finish: pending agent
// effects, orphaned agent claims and unassigned shipments.
type Reconciler struct {
	shipments  ports.ShipmentRepository
	agents     ports.AgentRepository
	bookkeeper *Bookkeeper
	dispatcher *Dispatcher
	log        zerolog.Logger
	now        func() time.Time
}

func NewReconciler(shipments ports.ShipmentRepository, agents ports.AgentRepository, bookkeeper *Bookkeeper, dispatcher *Dispatcher, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		shipments:  shipments,
		agents:     agents,
		bookkeeper: bookkeeper,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// Run reconciles every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("reconciliation failed")
			}
		}
	}
}

// RunOnce performs a single pass. A failing step is logged and the remaining
// steps still run; the first error is returned.
func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(r.settleEffects(ctx, &report))
	keep(r.releaseOrphans(ctx, &report))

	n, err := r.dispatcher.DispatchPending(ctx, reconcileBatch)
	report.Dispatched = n
	keep(err)

	r.log.Info().
		Int("effects_settled", report.EffectsSettled).
		Int("effects_failed", report.EffectsFailed).
		Int("claims_released", report.ClaimsReleased).
		Int("dispatched", report.Dispatched).
		Msg("reconciliation pass done")
	return report, firstErr
}

func (r *Reconciler) settleEffects(ctx context.Context, report *ReconcileReport) error {
	shipments, err := r.shipments.ListWithPendingEffects(ctx, reconcileBatch)
	if err != nil {
		return err
	}
	for _, s := range shipments {
		settled, failed := r.bookkeeper.SettleAll(ctx, s)
		report.EffectsSettled += settled
		report.EffectsFailed += failed
	}
	return nil
}

func (r *Reconciler) releaseOrphans(ctx context.Context, report *ReconcileReport) error {
	claimed, err := r.agents.ListClaimed(ctx)
	if err != nil {
		return err
	}
	for _, a := range claimed {
		orphan, err := r.isOrphan(ctx, a)
		if err != nil {
			r.log.Warn().Err(err).Str("agent_id", a.ID).Msg("claim check failed")
			continue
		}
		if !orphan {
			continue
		}
		released, err := r.agents.ReleaseClaim(ctx, a.ID, a.ActiveShipmentID)
		if err != nil {
			r.log.Warn().Err(err).Str("agent_id", a.ID).Msg("release of orphaned claim failed")
			continue
		}
		if released {
			report.ClaimsReleased++
			r.log.Info().Str("agent_id", a.ID).Str("shipment_id", a.ActiveShipmentID).Msg("orphaned agent claim released")
		}
	}
	return nil
}

// isOrphan reports whether the agent's claim no longer backs a live assignment.
func (r *Reconciler) isOrphan(ctx context.Context, a *domain.Agent) (bool, error) {
	s, err := r.shipments.FindByID(ctx, a.ActiveShipmentID)
	if errors.Is(err, domain.ErrShipmentNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if s.Status == domain.StatusPending {
		return r.now().Sub(a.UpdatedAt) > claimGrace, nil
	}
	if s.AgentID != a.ID {
		return true, nil
	}
	// Terminal shipments release through their pending effect.
	return s.Status.IsTerminal() && len(s.PendingEffects) == 0, nil
}
