package outbound

import (
	"context"
	"time"
)

// CounterStore is the shared counter contract backing the rate limiter.
// Counters are visible to every service instance; Increment must be atomic.
// Expiry is owned by the store: a key vanishes when its window elapses.
type CounterStore interface {
	// Get returns the counter value and whether the key exists.
	Get(ctx context.Context, key string) (int64, bool, error)

	// Increment atomically bumps the counter and returns the new value.
	// It does not touch the key's expiry.
	Increment(ctx context.Context, key string) (int64, error)

	// SetWithExpiry creates the key with the given value and time to live,
	// anchoring the window at first use.
	SetWithExpiry(ctx context.Context, key string, value int64, ttl time.Duration) error
}
