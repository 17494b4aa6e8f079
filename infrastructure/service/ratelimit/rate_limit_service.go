package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Config holds the fixed-window limits. Window is anchored at a key's first
// request; it is not refreshed by later requests.
type Config struct {
	Window         time.Duration
	MaxPerOrigin   int
	MaxPerIdentity int
}

// Service admits or rejects requests against two independent ceilings, one
// keyed by network origin and one by authenticated identity, using counters
// shared across all service instances.
type Service struct {
	counters outbound.CounterStore
	config   Config
	logger   logger.Logger
}

func NewService(counters outbound.CounterStore, config Config, log logger.Logger) *Service {
	return &Service{
		counters: counters,
		config:   config,
		logger:   log,
	}
}

func (s *Service) Window() time.Duration {
	return s.config.Window
}

// Allow evaluates the origin ceiling first. On rejection the identity counter
// is never read or incremented: the request fails fast on the first violated
// ceiling.
func (s *Service) Allow(ctx context.Context, origin string, identityID int64) error {
	if err := s.admit(ctx, originKey(origin), s.config.MaxPerOrigin); err != nil {
		return err
	}
	return s.admit(ctx, identityKey(identityID), s.config.MaxPerIdentity)
}

// admit runs the fixed-window check for one key. The read-then-increment gap
// can overshoot the ceiling slightly under concurrent bursts; that is the
// accepted fixed-window approximation.
func (s *Service) admit(ctx context.Context, key string, ceiling int) error {
	count, exists, err := s.counters.Get(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "failed to read rate limit counter", err, map[string]interface{}{
			"key": key,
		})
		return apperror.NewInternal()
	}

	if !exists {
		if err := s.counters.SetWithExpiry(ctx, key, 1, s.config.Window); err != nil {
			s.logger.Error(ctx, "failed to create rate limit counter", err, map[string]interface{}{
				"key": key,
			})
			return apperror.NewInternal()
		}
		return nil
	}

	if count >= int64(ceiling) {
		s.logger.Warn(ctx, "rate limit exceeded", map[string]interface{}{
			"key":     key,
			"count":   count,
			"ceiling": ceiling,
		})
		return apperror.NewTooManyRequests("too many requests, please try again later")
	}

	if _, err := s.counters.Increment(ctx, key); err != nil {
		s.logger.Error(ctx, "failed to increment rate limit counter", err, map[string]interface{}{
			"key": key,
		})
		return apperror.NewInternal()
	}
	return nil
}

func originKey(origin string) string {
	return "rl:ip:" + origin
}

func identityKey(id int64) string {
	return fmt.Sprintf("rl:user:%d", id)
}
