package ports

import (
	"context"
	"io"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// TrackingFeed fans tracking updates out to live subscribers of a tracking
// number. Publish must never block on a slow subscriber.
type TrackingFeed interface {
	Publish(ctx context.Context, update domain.TrackingUpdate) error
	// Subscribe returns a channel of updates and a cancel func that must be
	// called to release the subscription.
	Subscribe(ctx context.Context, trackingNumber string) (<-chan domain.TrackingUpdate, func(), error)
}

// LocationDedup remembers location reports that were already processed.
type LocationDedup interface {
	IsDuplicate(ctx context.Context, agentID string, ts time.Time) (bool, error)
	Mark(ctx context.Context, agentID string, ts time.Time) error
}

// ProofStore keeps delivery proof photos and returns their public URL.
type ProofStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
