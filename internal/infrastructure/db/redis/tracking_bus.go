package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

const subscriberBuffer = 16

// TrackingBus is a TrackingFeed over Redis pub/sub, so every API instance
// sees updates produced by any other.
type TrackingBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewTrackingBus(client *redis.Client, log zerolog.Logger) *TrackingBus {
	return &TrackingBus{client: client, log: log}
}

func channelFor(trackingNumber string) string {
	return "tracking:" + trackingNumber
}

func (b *TrackingBus) Publish(ctx context.Context, update domain.TrackingUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode tracking update: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(update.TrackingNumber), payload).Err(); err != nil {
		return fmt.Errorf("publish tracking update: %w", err)
	}
	return nil
}

// Subscribe confirms the subscription before returning. Updates that arrive
// while the consumer is behind are dropped.
func (b *TrackingBus) Subscribe(ctx context.Context, trackingNumber string) (<-chan domain.TrackingUpdate, func(), error) {
	ps := b.client.Subscribe(ctx, channelFor(trackingNumber))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe tracking: %w", err)
	}

	out := make(chan domain.TrackingUpdate, subscriberBuffer)
	in := ps.Channel()
	metrics.TrackingSubscribers.Inc()

	go func() {
		defer close(out)
		for msg := range in {
			var u domain.TrackingUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed tracking update")
				continue
			}
			select {
			case out <- u:
			default:
				metrics.TrackingUpdatesDropped.Inc()
			}
		}
	}()

	cancel := func() {
		if err := ps.Close(); err == nil {
			metrics.TrackingSubscribers.Dec()
		}
	}
	return out, cancel, nil
}
