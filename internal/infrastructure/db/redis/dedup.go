package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker remembers processed location reports in Redis.
// Key format: dedup:location:<agent_id>:<unix_nano>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact report has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, agentID string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(agentID, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this report has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, agentID string, ts time.Time) error {
	return d.client.Set(ctx, d.key(agentID, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(agentID string, ts time.Time) string {
	return fmt.Sprintf("dedup:location:%s:%d", agentID, ts.UnixNano())
}
