package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// Get returns the cached payload and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload, expiring after ttl (0 keeps it forever)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type IdempotencyStore interface {
	// SetIdempotency claims key, returning false if it was already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
