package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/infrastructure/http/response"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Limiter is the admission gate the middleware delegates to.
type Limiter interface {
	Allow(ctx context.Context, origin string, identityID int64) error
}

// RateLimitMiddleware guards a route: bootstrap bypass, then authentication,
// then the origin and identity ceilings, in that order. Authentication is a
// precondition of identity-keyed limiting, so an uncredentialed request is
// rejected before any counter is touched.
type RateLimitMiddleware struct {
	limiter        Limiter
	auth           *AuthMiddleware
	users          outbound.UserRepository
	bootstrapPaths map[string]bool
	retryAfterSecs int
	logger         logger.Logger
}

func NewRateLimitMiddleware(
	limiter Limiter,
	auth *AuthMiddleware,
	users outbound.UserRepository,
	bootstrapPaths []string,
	retryAfterSecs int,
	log logger.Logger,
) *RateLimitMiddleware {
	paths := make(map[string]bool, len(bootstrapPaths))
	for _, p := range bootstrapPaths {
		paths[p] = true
	}
	return &RateLimitMiddleware{
		limiter:        limiter,
		auth:           auth,
		users:          users,
		bootstrapPaths: paths,
		retryAfterSecs: retryAfterSecs,
		logger:         log,
	}
}

func (m *RateLimitMiddleware) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// The bootstrap bypass holds only while the system has zero
		// identities. The count is queried on every request: creating the
		// first identity closes the window immediately.
		if m.bootstrapPaths[r.URL.Path] {
			count, err := m.users.Count(ctx)
			if err != nil {
				m.logger.Error(ctx, "failed to check bootstrap state", err, map[string]interface{}{
					"path": r.URL.Path,
				})
				response.AppError(w, apperror.NewInternal())
				return
			}
			if count == 0 {
				next.ServeHTTP(w, r)
				return
			}
		}

		actor, err := m.auth.Authenticate(r)
		if err != nil {
			response.AppError(w, err)
			return
		}

		origin := clientIP(r)
		if err := m.limiter.Allow(ctx, origin, actor.ID); err != nil {
			if apperror.IsKind(err, apperror.KindTooManyRequests) {
				m.logger.Warn(ctx, "request throttled", map[string]interface{}{
					"ip":      origin,
					"user_id": actor.ID,
					"path":    r.URL.Path,
				})
				w.Header().Set("Retry-After", fmt.Sprintf("%d", m.retryAfterSecs))
			}
			response.AppError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
	})
}

// clientIP extracts the network origin, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
