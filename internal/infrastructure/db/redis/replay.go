package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayTTL = 24 * time.Hour

// ReplayChecker short-circuits webhook replays. It is advisory only: the
// conditional write in the confirmation engine is what guarantees
// exactly-once, so a cold or unavailable Redis merely costs a redundant
// database round-trip.
type ReplayChecker struct {
	client *redis.Client
}

// NewReplayChecker creates a ReplayChecker wrapping the given Redis client.
func NewReplayChecker(client *redis.Client) *ReplayChecker {
	return &ReplayChecker{client: client}
}

// Seen reports whether a confirmation for this reference was already applied.
func (r *ReplayChecker) Seen(ctx context.Context, reference string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(reference)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// Mark records an applied confirmation (expires after replayTTL).
func (r *ReplayChecker) Mark(ctx context.Context, reference string) error {
	return r.client.Set(ctx, r.key(reference), "1", replayTTL).Err()
}

func (r *ReplayChecker) key(reference string) string {
	return fmt.Sprintf("replay:%s", reference)
}
