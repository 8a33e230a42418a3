package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ---- Dedup ----

func TestDedupChecker_MarkThenDuplicate(t *testing.T) {
	_, client := newTestClient(t)
	d := NewDedupChecker(client)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC)

	dup, err := d.IsDuplicate(ctx, "agent-1", ts)
	require.NoError(t, err)
	require.False(t, dup)

	require.NoError(t, d.Mark(ctx, "agent-1", ts))

	dup, err = d.IsDuplicate(ctx, "agent-1", ts)
	require.NoError(t, err)
	require.True(t, dup)

	// Nanosecond precision and agent both belong to the key.
	dup, err = d.IsDuplicate(ctx, "agent-1", ts.Add(time.Nanosecond))
	require.NoError(t, err)
	require.False(t, dup)
	dup, err = d.IsDuplicate(ctx, "agent-2", ts)
	require.NoError(t, err)
	require.False(t, dup)
}

func TestDedupChecker_MarkExpires(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewDedupChecker(client)
	ctx := context.Background()
	ts := time.Now()

	require.NoError(t, d.Mark(ctx, "agent-1", ts))
	mr.FastForward(dedupTTL + time.Second)

	dup, err := d.IsDuplicate(ctx, "agent-1", ts)
	require.NoError(t, err)
	require.False(t, dup)
}

// ---- TrackingBus ----

func TestTrackingBus_PublishReachesSubscriber(t *testing.T) {
	_, client := newTestClient(t)
	bus := NewTrackingBus(client, zerolog.Nop())
	ctx := context.Background()

	ch, cancel, err := bus.Subscribe(ctx, "DLV-0000000001")
	require.NoError(t, err)
	defer cancel()

	eta := 12
	require.NoError(t, bus.Publish(ctx, domain.TrackingUpdate{
		TrackingNumber: "DLV-0000000001",
		Status:         domain.StatusOutForDelivery,
		ETAMinutes:     &eta,
	}))

	select {
	case u := <-ch:
		require.Equal(t, domain.StatusOutForDelivery, u.Status)
		require.NotNil(t, u.ETAMinutes)
		require.Equal(t, 12, *u.ETAMinutes)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
}

func TestTrackingBus_CancelClosesChannel(t *testing.T) {
	_, client := newTestClient(t)
	bus := NewTrackingBus(client, zerolog.Nop())

	ch, cancel, err := bus.Subscribe(context.Background(), "DLV-0000000002")
	require.NoError(t, err)
	cancel()
	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestConnect_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	require.Error(t, err)
}
