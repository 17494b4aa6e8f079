package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/leadvault/leadvault/application/port/outbound"
)

// CounterStoreAdapter implements the shared counter contract on Redis.
// INCR is atomic server-side; SET with EX anchors the window at first use.
type CounterStoreAdapter struct {
	client *redis.Client
}

func NewCounterStoreAdapter(client *redis.Client) *CounterStoreAdapter {
	return &CounterStoreAdapter{client: client}
}

var _ outbound.CounterStore = (*CounterStoreAdapter)(nil)

// Dial connects to Redis from a URL and verifies the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (a *CounterStoreAdapter) Get(ctx context.Context, key string) (int64, bool, error) {
	count, err := a.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get counter %s: %w", key, err)
	}
	return count, true, nil
}

func (a *CounterStoreAdapter) Increment(ctx context.Context, key string) (int64, error) {
	count, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return count, nil
}

func (a *CounterStoreAdapter) SetWithExpiry(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := a.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set counter %s: %w", key, err)
	}
	return nil
}
