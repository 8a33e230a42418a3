// Package stream holds the in-process tracking feed used when a single API
// instance serves every websocket subscriber.
package stream

import (
	"context"
	"sync"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

const subscriberBuffer = 16

type subscriber struct {
	ch   chan domain.TrackingUpdate
	once sync.Once
}

// Hub fans updates out to subscribers keyed by tracking number. A full
// subscriber buffer drops the update rather than stalling the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) Publish(_ context.Context, update domain.TrackingUpdate) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[update.TrackingNumber] {
		select {
		case s.ch <- update:
		default:
			metrics.TrackingUpdatesDropped.Inc()
		}
	}
	return nil
}

// Subscribe registers a subscriber. The returned cancel func is idempotent
// and closes the channel.
func (h *Hub) Subscribe(_ context.Context, trackingNumber string) (<-chan domain.TrackingUpdate, func(), error) {
	s := &subscriber{ch: make(chan domain.TrackingUpdate, subscriberBuffer)}

	h.mu.Lock()
	set, ok := h.subs[trackingNumber]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[trackingNumber] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.TrackingSubscribers.Inc()

	cancel := func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs[trackingNumber], s)
			if len(h.subs[trackingNumber]) == 0 {
				delete(h.subs, trackingNumber)
			}
			h.mu.Unlock()
			close(s.ch)
			metrics.TrackingSubscribers.Dec()
		})
	}
	return s.ch, cancel, nil
}

// Subscribers returns the number of live subscribers for trackingNumber.
func (h *Hub) Subscribers(trackingNumber string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[trackingNumber])
}
