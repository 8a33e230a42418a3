package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := map[ShipmentStatus][]ShipmentStatus{
		StatusPending:        {StatusAssigned, StatusCancelled},
		StatusAssigned:       {StatusPickedUp, StatusCancelled},
		StatusPickedUp:       {StatusInTransit, StatusFailed},
		StatusInTransit:      {StatusOutForDelivery, StatusFailed},
		StatusOutForDelivery: {StatusDelivered, StatusFailed},
		StatusFailed:         {StatusReturning, StatusPickedUp},
		StatusReturning:      {StatusReturned},
	}
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: want %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[ShipmentStatus]bool{StatusDelivered: true, StatusCancelled: true, StatusReturned: true}
	for _, s := range AllStatuses() {
		if s.IsTerminal() != terminal[s] {
			t.Errorf("%s: IsTerminal = %v", s, s.IsTerminal())
		}
	}
	if ShipmentStatus("LOST").IsTerminal() {
		t.Error("unknown status must not be terminal")
	}
}

func TestParseShipmentStatus(t *testing.T) {
	tests := map[string]ShipmentStatus{
		"pending":          StatusPending,
		"out-for-delivery": StatusOutForDelivery,
		" in transit ":     StatusInTransit,
		"PICKED_UP":        StatusPickedUp,
	}
	for raw, want := range tests {
		got, err := ParseShipmentStatus(raw)
		if err != nil || got != want {
			t.Errorf("ParseShipmentStatus(%q) = %s, %v", raw, got, err)
		}
	}
	_, err := ParseShipmentStatus("lost")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestParseDeliveryType_FallsBackToStandard(t *testing.T) {
	if got := ParseDeliveryType("same-day"); got != DeliverySameDay {
		t.Fatalf("want SAME_DAY, got %s", got)
	}
	if got := ParseDeliveryType("teleport"); got != DeliveryStandard {
		t.Fatalf("want STANDARD, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// PlanTransition
// ---------------------------------------------------------------------------

func shipmentWith(status ShipmentStatus, cod *float64) *Shipment {
	return &Shipment{
		ID:        "s1",
		Status:    status,
		AgentID:   "a1",
		CODAmount: cod,
		Fee:       FeeBreakdown{Subtotal: 550},
		Version:   3,
	}
}

func TestPlanTransition_Invalid(t *testing.T) {
	s := shipmentWith(StatusPickedUp, nil)
	_, err := s.PlanTransition(StatusOutForDelivery, TransitionInput{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPlanTransition_DeliveredWithCODDiscrepancy(t *testing.T) {
	expected := 10000.0
	s := shipmentWith(StatusOutForDelivery, &expected)
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	if _, err := s.PlanTransition(StatusDelivered, TransitionInput{At: at}); err == nil {
		t.Fatal("COD delivery without collected amount must fail")
	}

	collected := 9000.0
	change, err := s.PlanTransition(StatusDelivered, TransitionInput{EventID: "e1", CODCollected: &collected, At: at})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if change.COD == nil || !change.COD.Discrepancy || change.COD.Collected != 9000 {
		t.Fatalf("unexpected COD record %+v", change.COD)
	}
	if change.Effect == nil || change.Effect.CompletedDelta != 1 || !change.Effect.Release || change.Effect.Earnings != 550 {
		t.Fatalf("unexpected effect %+v", change.Effect)
	}

	s.Apply(change)
	if s.Status != StatusDelivered || s.DeliveredAt == nil || !s.DeliveredAt.Equal(at) {
		t.Fatalf("apply did not record delivery: %+v", s)
	}
	if s.Version != 4 || len(s.Events) != 1 || len(s.PendingEffects) != 1 {
		t.Fatalf("apply bookkeeping wrong: version=%d events=%d effects=%d", s.Version, len(s.Events), len(s.PendingEffects))
	}
}

func TestPlanTransition_ExactCODHasNoDiscrepancy(t *testing.T) {
	expected := 2500.0
	s := shipmentWith(StatusOutForDelivery, &expected)
	collected := 2500.001
	change, err := s.PlanTransition(StatusDelivered, TransitionInput{CODCollected: &collected, At: time.Now()})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if change.COD.Discrepancy {
		t.Fatal("sub-cent difference must not count as a discrepancy")
	}
}

func TestPlanTransition_Effects(t *testing.T) {
	tests := []struct {
		from, to ShipmentStatus
		in       TransitionInput
		effect   bool
		release  bool
	}{
		{StatusAssigned, StatusPickedUp, TransitionInput{}, false, false},
		{StatusPickedUp, StatusFailed, TransitionInput{FailedReason: "closed"}, true, false},
		{StatusAssigned, StatusCancelled, TransitionInput{}, true, true},
		{StatusReturning, StatusReturned, TransitionInput{}, true, true},
	}
	for _, tt := range tests {
		change, err := shipmentWith(tt.from, nil).PlanTransition(tt.to, tt.in)
		if err != nil {
			t.Fatalf("%s -> %s: %v", tt.from, tt.to, err)
		}
		if (change.Effect != nil) != tt.effect {
			t.Errorf("%s -> %s: effect present = %v", tt.from, tt.to, change.Effect != nil)
			continue
		}
		if change.Effect != nil && change.Effect.Release != tt.release {
			t.Errorf("%s -> %s: release = %v", tt.from, tt.to, change.Effect.Release)
		}
	}
}

func TestPlanTransition_CancelPendingHasNoEffect(t *testing.T) {
	s := shipmentWith(StatusPending, nil)
	s.AgentID = ""
	change, err := s.PlanTransition(StatusCancelled, TransitionInput{Notes: "duplicate order"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if change.Effect != nil {
		t.Fatalf("unassigned shipment must not owe agent bookkeeping: %+v", change.Effect)
	}
	if change.Event.Description != "Shipment cancelled (duplicate order)" {
		t.Errorf("description: %q", change.Event.Description)
	}
}

func TestPlanCODResolution(t *testing.T) {
	s := shipmentWith(StatusDelivered, nil)
	if _, _, err := s.PlanCODResolution("admin", "", "e1", time.Now()); err == nil {
		t.Fatal("resolution without discrepancy must fail")
	}
	s.COD = &CODRecord{Expected: 100, Collected: 90, Discrepancy: true}
	res, ev, err := s.PlanCODResolution("admin", "ok", "e1", time.Now())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	s.ApplyCODResolution(res, ev)
	if !s.COD.Resolved || s.COD.ResolvedAt == nil || ev.Type != EventCODResolved {
		t.Fatalf("resolution not applied: %+v", s.COD)
	}
	if _, _, err := s.PlanCODResolution("admin", "", "e2", time.Now()); err == nil {
		t.Fatal("double resolution must fail")
	}
}

// ---------------------------------------------------------------------------
// Geo
// ---------------------------------------------------------------------------

func TestDistanceKm(t *testing.T) {
	lagos := Coordinates{Lat: 6.5244, Lng: 3.3792}
	abuja := Coordinates{Lat: 9.0765, Lng: 7.3986}

	if d := DistanceKm(lagos, lagos); d != 0 {
		t.Fatalf("same point: %v", d)
	}
	d := DistanceKm(lagos, abuja)
	if d < 520 || d > 540 {
		t.Fatalf("lagos-abuja: want ~529km, got %v", d)
	}
	if back := DistanceKm(abuja, lagos); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d, back)
	}
	oneDegree := DistanceKm(Coordinates{}, Coordinates{Lat: 1})
	if math.Abs(oneDegree-EarthRadiusKm*math.Pi/180) > 1e-6 {
		t.Fatalf("one degree of latitude: %v", oneDegree)
	}
}

func TestCoordinatesValid(t *testing.T) {
	valid := []Coordinates{{0, 0}, {90, 180}, {-90, -180}}
	invalid := []Coordinates{{90.1, 0}, {0, -180.5}}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("%v should be valid", c)
		}
	}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("%v should be invalid", c)
		}
	}
}

func TestZone(t *testing.T) {
	z := &Zone{
		Centroid: Coordinates{Lat: 6.5, Lng: 3.4},
		RadiusKm: 10,
		Rates:    RateCard{BaseFee: 300},
		IsActive: true,
	}
	if !z.Contains(Coordinates{Lat: 6.55, Lng: 3.4}) || z.Contains(Coordinates{Lat: 7, Lng: 3.4}) {
		t.Fatal("radius containment wrong")
	}
	if z.EffectiveRates().BaseFee != 300 {
		t.Fatal("base rates expected without override")
	}
	z.Override = &RateCard{BaseFee: 100}
	if z.EffectiveRates().BaseFee != 100 {
		t.Fatal("override not applied")
	}
	z.IsSuspended = true
	if z.Serviceable() {
		t.Fatal("suspended zone must not be serviceable")
	}
}

func TestAgentDispatchable(t *testing.T) {
	a := &Agent{Status: AgentActive, IsVerified: true, IsAvailable: true, MaxCapacityKg: 10}
	if !a.Dispatchable(10) {
		t.Fatal("eligible agent rejected")
	}
	if a.Dispatchable(10.5) {
		t.Fatal("over capacity accepted")
	}
	a.ActiveShipmentID = "s1"
	if a.Dispatchable(1) {
		t.Fatal("busy agent accepted")
	}
}
