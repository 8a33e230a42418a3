package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

func seedShipment(t *testing.T, r *ShipmentRepository, id string, status domain.ShipmentStatus, created time.Time) *domain.Shipment {
	t.Helper()
	s := &domain.Shipment{
		ID:             id,
		TrackingNumber: "DLV-" + id,
		CustomerID:     "cust-1",
		Status:         status,
		DeliveryType:   domain.DeliveryStandard,
		CreatedAt:      created,
	}
	require.NoError(t, r.Create(context.Background(), s))
	return s
}

func idleAgent(id string, total int, lastActive time.Time) *domain.Agent {
	return &domain.Agent{
		ID:              id,
		UserID:          "user-" + id,
		Status:          domain.AgentActive,
		IsVerified:      true,
		IsAvailable:     true,
		MaxCapacityKg:   20,
		TotalDeliveries: total,
		LastActiveAt:    lastActive,
	}
}

// ---- Shipments ----

func TestShipmentRepository_CreateRejectsDuplicates(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	s := seedShipment(t, r, "s1", domain.StatusPending, time.Now())

	dup := *s
	dup.ID = "s2"
	require.ErrorIs(t, r.Create(ctx, &dup), domain.ErrDuplicateShipment)

	keyed := &domain.Shipment{ID: "s3", TrackingNumber: "DLV-s3", CustomerID: "cust-1", IdempotencyKey: "k"}
	require.NoError(t, r.Create(ctx, keyed))
	again := &domain.Shipment{ID: "s4", TrackingNumber: "DLV-s4", CustomerID: "cust-1", IdempotencyKey: "k"}
	require.ErrorIs(t, r.Create(ctx, again), domain.ErrDuplicateShipment)

	got, err := r.FindByIdempotencyKey(ctx, "cust-1", "k")
	require.NoError(t, err)
	require.Equal(t, "s3", got.ID)
}

func TestShipmentRepository_ReturnsCopies(t *testing.T) {
	r := NewShipmentRepository()
	seedShipment(t, r, "s1", domain.StatusPending, time.Now())

	got, err := r.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	got.Status = domain.StatusDelivered

	again, err := r.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, again.Status)
}

func TestShipmentRepository_ApplyStatusChangeChecksVersion(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	s := seedShipment(t, r, "s1", domain.StatusPending, time.Now())

	change, err := s.PlanTransition(domain.StatusCancelled, domain.TransitionInput{EventID: "e1", At: time.Now()})
	require.NoError(t, err)

	_, err = r.ApplyStatusChange(ctx, "s1", s.Version+1, change)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	updated, err := r.ApplyStatusChange(ctx, "s1", s.Version, change)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, updated.Status)
	require.Equal(t, s.Version+1, updated.Version)

	// The same planned change cannot be applied twice.
	_, err = r.ApplyStatusChange(ctx, "s1", updated.Version, change)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestShipmentRepository_UpdateTrackingOnlyNewerWhileMoving(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	seedShipment(t, r, "pending", domain.StatusPending, time.Now())
	seedShipment(t, r, "moving", domain.StatusInTransit, time.Now())
	now := time.Now().UTC()

	patch := func(at time.Time) ports.TrackingPatch {
		return ports.TrackingPatch{Location: domain.GeoPoint{Lat: 6.5, Lng: 3.4, RecordedAt: at}, DistanceToDestinationKm: 2, ETAMinutes: 4}
	}

	ok, err := r.UpdateTracking(ctx, "pending", patch(now))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.UpdateTracking(ctx, "moving", patch(now))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.UpdateTracking(ctx, "moving", patch(now.Add(-time.Second)))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = r.UpdateTracking(ctx, "missing", patch(now))
	require.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestShipmentRepository_MarkNearbyOnce(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	seedShipment(t, r, "s1", domain.StatusOutForDelivery, time.Now())
	ev := domain.TrackingEvent{ID: "e1", Type: domain.EventAgentNearby}

	first, err := r.MarkNearby(ctx, "s1", ev)
	require.NoError(t, err)
	require.True(t, first)
	second, err := r.MarkNearby(ctx, "s1", ev)
	require.NoError(t, err)
	require.False(t, second)

	s, err := r.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s.Events, 1)
}

func TestShipmentRepository_ListFilters(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedShipment(t, r, "a", domain.StatusPending, base)
	seedShipment(t, r, "b", domain.StatusDelivered, base.Add(24*time.Hour))
	seedShipment(t, r, "c", domain.StatusPending, base.Add(48*time.Hour))

	items, total, err := r.List(ctx, ports.ShipmentFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "c", items[0].ID, "newest first by default")

	items, _, err = r.List(ctx, ports.ShipmentFilter{Status: domain.StatusPending, OldestFirst: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "a", items[0].ID)

	items, total, err = r.List(ctx, ports.ShipmentFilter{DateFrom: base.Add(time.Hour), DateTo: base.Add(30 * time.Hour)})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "b", items[0].ID)

	items, _, err = r.List(ctx, ports.ShipmentFilter{Search: "DLV-C"})
	require.NoError(t, err)
	require.Empty(t, items, "search is a case sensitive prefix on the stored number")

	items, total, err = r.List(ctx, ports.ShipmentFilter{Page: 5, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Empty(t, items)
}

func TestShipmentRepository_PendingEffects(t *testing.T) {
	r := NewShipmentRepository()
	ctx := context.Background()
	s := seedShipment(t, r, "s1", domain.StatusOutForDelivery, time.Now())
	s.AgentID = "a1"

	change, err := s.PlanTransition(domain.StatusDelivered, domain.TransitionInput{EventID: "e1", At: time.Now()})
	require.NoError(t, err)
	_, err = r.ApplyStatusChange(ctx, "s1", s.Version, change)
	require.NoError(t, err)

	pending, err := r.ListWithPendingEffects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, r.ClearEffect(ctx, "s1", "e1"))
	pending, err = r.ListWithPendingEffects(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

// ---- Agents ----

func TestAgentRepository_ClaimIdleOrdering(t *testing.T) {
	r := NewAgentRepository()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, r.Create(ctx, idleAgent("busy", 10, now.Add(-time.Hour))))
	require.NoError(t, r.Create(ctx, idleAgent("recent", 2, now)))
	require.NoError(t, r.Create(ctx, idleAgent("waiting", 2, now.Add(-time.Minute))))

	a, err := r.ClaimIdle(ctx, "s1", 1, now)
	require.NoError(t, err)
	require.Equal(t, "waiting", a.ID, "ties on load go to the longest idle agent")

	a, err = r.ClaimIdle(ctx, "s2", 1, now)
	require.NoError(t, err)
	require.Equal(t, "recent", a.ID)

	_, err = r.ClaimIdle(ctx, "s3", 25, now)
	require.ErrorIs(t, err, domain.ErrNoAgentAvailable)
}

func TestAgentRepository_ClaimAndRelease(t *testing.T) {
	r := NewAgentRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, idleAgent("a1", 0, time.Now())))

	_, err := r.Claim(ctx, "a1", "s1", 1, time.Now())
	require.NoError(t, err)
	_, err = r.Claim(ctx, "a1", "s2", 1, time.Now())
	require.ErrorIs(t, err, domain.ErrAgentNotDispatchable)

	released, err := r.ReleaseClaim(ctx, "a1", "s2")
	require.NoError(t, err)
	require.False(t, released, "release must match the held shipment")

	claimed, err := r.ListClaimed(ctx)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	released, err = r.ReleaseClaim(ctx, "a1", "s1")
	require.NoError(t, err)
	require.True(t, released)
}

func TestAgentRepository_ApplyStatsOncePerEffect(t *testing.T) {
	r := NewAgentRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, idleAgent("a1", 0, time.Now())))
	e := domain.AgentEffect{ID: "e1", AgentID: "a1", TotalDelta: 1, CompletedDelta: 1, Earnings: 550}

	applied, err := r.ApplyStats(ctx, e)
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = r.ApplyStats(ctx, e)
	require.NoError(t, err)
	require.False(t, applied)

	a, err := r.FindByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 1, a.TotalDeliveries)
	require.InDelta(t, 550, a.Earnings, 0.001)

	_, err = r.ApplyStats(ctx, domain.AgentEffect{ID: "e2", AgentID: "ghost", TotalDelta: 1})
	require.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestAgentRepository_UpdateLocationMonotonic(t *testing.T) {
	r := NewAgentRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, idleAgent("a1", 0, time.Time{})))
	now := time.Now().UTC()

	ok, err := r.UpdateLocation(ctx, "a1", domain.GeoPoint{Lat: 1, RecordedAt: now})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.UpdateLocation(ctx, "a1", domain.GeoPoint{Lat: 2, RecordedAt: now})
	require.NoError(t, err)
	require.False(t, ok, "equal timestamps are not newer")

	a, err := r.FindByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 1.0, a.CurrentLocation.Lat)
	require.True(t, a.LastActiveAt.Equal(now))
}

func TestAgentRepository_CreateUniquePerUser(t *testing.T) {
	r := NewAgentRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, idleAgent("a1", 0, time.Now())))
	other := idleAgent("a2", 0, time.Now())
	other.UserID = "user-a1"
	require.ErrorIs(t, r.Create(ctx, other), domain.ErrAgentExists)
}

// ---- Zones / users ----

func TestZoneRepository_SetSuspended(t *testing.T) {
	r := NewZoneRepository(&domain.Zone{Code: "LAG", IsActive: true})
	z, err := r.SetSuspended(context.Background(), "LAG", true, "flood")
	require.NoError(t, err)
	require.True(t, z.IsSuspended)
	require.Equal(t, "flood", z.SuspensionReason)

	_, err = r.SetSuspended(context.Background(), "ABJ", true, "x")
	require.ErrorIs(t, err, domain.ErrZoneNotFound)
}

func TestAuthRepository_UniqueUsername(t *testing.T) {
	r := NewAuthRepository()
	ctx := context.Background()
	_, err := r.Create(ctx, &domain.User{ID: "u1", Username: "ada"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &domain.User{ID: "u2", Username: "ada"})
	require.ErrorIs(t, err, domain.ErrUserExists)

	u, err := r.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	_, err = r.FindByUsername(ctx, "bola")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
