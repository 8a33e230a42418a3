package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

func cancelBy(adminID, shipmentID string) ports.TransitionRequest {
	return ports.TransitionRequest{
		ShipmentID: shipmentID,
		Status:     string(domain.StatusCancelled),
		Actor:      domain.Actor{Role: domain.RoleAdmin, ID: adminID},
	}
}

// assigned creates a shipment dispatched to a fresh agent a1.
func assigned(t *testing.T, f *fixture) *domain.Shipment {
	t.Helper()
	f.addAgent(t, "a1")
	res := f.create(t, createInput("cust-1"))
	if res.Shipment.AgentID != "a1" {
		t.Fatalf("fixture: expected assignment to a1, got %q", res.Shipment.AgentID)
	}
	return res.Shipment
}

// ---------------------------------------------------------------------------
// Validation / authorization
// ---------------------------------------------------------------------------

func TestLifecycle_SkippingStatusIsRejected(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	f.advance(t, s.ID, "a1", domain.StatusPickedUp)

	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "OUT_FOR_DELIVERY",
		Actor:      domain.Actor{Role: domain.RoleAgent, ID: "a1"},
	})
	var ite *domain.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if ite.From != domain.StatusPickedUp || ite.To != domain.StatusOutForDelivery {
		t.Errorf("unexpected states %s -> %s", ite.From, ite.To)
	}
	if got := f.shipment(t, s.ID); len(got.Events) != 3 {
		t.Errorf("rejected transition must not append events, have %d", len(got.Events))
	}
}

func TestLifecycle_AssignedOnlyThroughDispatch(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, createInput("cust-1")).Shipment
	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "ASSIGNED",
		Actor:      domain.Actor{Role: domain.RoleAdmin, ID: "admin-1"},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLifecycle_OtherAgentForbidden(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "PICKED_UP",
		Actor:      domain.Actor{Role: domain.RoleAgent, ID: "a2"},
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLifecycle_CustomerMayOnlyCancel(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "PICKED_UP",
		Actor:      domain.Actor{Role: domain.RoleCustomer, ID: "cust-1"},
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLifecycle_FailedRequiresReason(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	f.advance(t, s.ID, "a1", domain.StatusPickedUp)
	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "FAILED",
		Actor:      domain.Actor{Role: domain.RoleAgent, ID: "a1"},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "failed_reason" {
		t.Fatalf("expected failed_reason validation error, got %v", err)
	}
}

func TestLifecycle_RejectsBadLocation(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	_, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID: s.ID,
		Status:     "PICKED_UP",
		Actor:      domain.Actor{Role: domain.RoleAgent, ID: "a1"},
		Location:   &ports.CoordinatesInput{Lat: 95, Lng: 0},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "location" {
		t.Fatalf("expected location validation error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delivery bookkeeping
// ---------------------------------------------------------------------------

func TestLifecycle_DeliveredUpdatesAgentOnce(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	out := f.advance(t, s.ID, "a1", domain.StatusPickedUp, domain.StatusInTransit, domain.StatusOutForDelivery, domain.StatusDelivered)
	if out.Effect != ports.EffectApplied {
		t.Fatalf("expected applied effect, got %s (%s)", out.Effect, out.EffectError)
	}
	if out.Shipment.DeliveredAt == nil {
		t.Fatal("delivered_at not set")
	}

	replay := f.advance(t, s.ID, "a1", domain.StatusDelivered)
	if !replay.Replayed {
		t.Fatal("expected same-status request to be a replay")
	}

	a := f.agent(t, "a1")
	if a.TotalDeliveries != 1 || a.CompletedDeliveries != 1 {
		t.Fatalf("expected counters counted once, got total=%d completed=%d", a.TotalDeliveries, a.CompletedDeliveries)
	}
	if !approx(a.Earnings, s.Fee.Subtotal) {
		t.Errorf("earnings: want %v, got %v", s.Fee.Subtotal, a.Earnings)
	}
	if a.ActiveShipmentID != "" {
		t.Errorf("agent should be released after delivery, holds %q", a.ActiveShipmentID)
	}
	if got := f.shipment(t, s.ID); len(got.Events) != 6 || len(got.PendingEffects) != 0 {
		t.Errorf("unexpected shipment state: %d events, %d effects", len(got.Events), len(got.PendingEffects))
	}
}

func TestLifecycle_FailedAttemptCanBeRetried(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	f.advance(t, s.ID, "a1", domain.StatusPickedUp)
	if _, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
		ShipmentID:   s.ID,
		Status:       "FAILED",
		FailedReason: "recipient absent",
		Actor:        domain.Actor{Role: domain.RoleAgent, ID: "a1"},
	}); err != nil {
		t.Fatalf("fail: %v", err)
	}
	f.advance(t, s.ID, "a1", domain.StatusPickedUp)

	a := f.agent(t, "a1")
	if a.FailedDeliveries != 1 {
		t.Fatalf("expected one failed delivery, got %d", a.FailedDeliveries)
	}
	if a.ActiveShipmentID != s.ID {
		t.Fatalf("agent should keep the shipment across a retry, holds %q", a.ActiveShipmentID)
	}
	if got := f.shipment(t, s.ID); got.FailedReason != "recipient absent" {
		t.Errorf("failed reason: %q", got.FailedReason)
	}
}

func TestLifecycle_ConcurrentSameTransitionAppliesOnce(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	replayed := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.lifecycle.Transition(context.Background(), ports.TransitionRequest{
				ShipmentID: s.ID,
				Status:     "PICKED_UP",
				Actor:      domain.Actor{Role: domain.RoleAgent, ID: "a1"},
			})
			errs[i] = err
			if out != nil {
				replayed[i] = out.Replayed
			}
		}(i)
	}
	wg.Wait()

	applied := 0
	for i, err := range errs {
		if err != nil && !errors.Is(err, domain.ErrConcurrentUpdate) {
			t.Fatalf("call %d: %v", i, err)
		}
		if err == nil && !replayed[i] {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("expected one applied transition, got %d", applied)
	}
	got := f.shipment(t, s.ID)
	if len(got.Events) != 3 || got.Version != 2 {
		t.Fatalf("expected 3 events at version 2, got %d events at version %d", len(got.Events), got.Version)
	}
}

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

func TestReconciler_SettlesPendingEffects(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	f.advance(t, s.ID, "a1", domain.StatusPickedUp, domain.StatusInTransit, domain.StatusOutForDelivery)

	f.agents.setFail(true)
	out := f.advance(t, s.ID, "a1", domain.StatusDelivered)
	if out.Effect != ports.EffectPending || out.EffectError == "" {
		t.Fatalf("expected pending effect, got %s", out.Effect)
	}
	if out.Shipment.Status != domain.StatusDelivered {
		t.Fatalf("primary transition must stand, got %s", out.Shipment.Status)
	}
	if n := len(f.shipment(t, s.ID).PendingEffects); n != 1 {
		t.Fatalf("expected one stored pending effect, got %d", n)
	}

	f.agents.setFail(false)
	report, err := f.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.EffectsSettled != 1 || report.EffectsFailed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	a := f.agent(t, "a1")
	if a.CompletedDeliveries != 1 || a.ActiveShipmentID != "" {
		t.Fatalf("agent not settled: completed=%d active=%q", a.CompletedDeliveries, a.ActiveShipmentID)
	}

	// A second pass finds nothing to do and does not double count.
	report, _ = f.reconciler.RunOnce(context.Background())
	if report.EffectsSettled != 0 || f.agent(t, "a1").CompletedDeliveries != 1 {
		t.Fatalf("second pass changed state: %+v", report)
	}
}

func TestReconciler_ReleasesOrphanedClaim(t *testing.T) {
	f := newFixture(t)
	f.addAgent(t, "a1")
	if _, err := f.agents.Claim(context.Background(), "a1", "ghost", 1, time.Now()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	report, err := f.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.ClaimsReleased != 1 {
		t.Fatalf("expected one released claim, got %+v", report)
	}
	if got := f.agent(t, "a1").ActiveShipmentID; got != "" {
		t.Fatalf("claim still held: %q", got)
	}
}

func TestReconciler_KeepsLiveClaim(t *testing.T) {
	f := newFixture(t)
	s := assigned(t, f)
	report, err := f.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.ClaimsReleased != 0 || f.agent(t, "a1").ActiveShipmentID != s.ID {
		t.Fatalf("live claim was released: %+v", report)
	}
}

func TestReconciler_DispatchesPending(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, createInput("cust-1")).Shipment
	f.addAgent(t, "a1")

	report, err := f.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.Dispatched != 1 || f.shipment(t, s.ID).AgentID != "a1" {
		t.Fatalf("pending shipment not dispatched: %+v", report)
	}
}
