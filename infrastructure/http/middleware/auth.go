package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/pkg/apperror"
)

type ctxKey int

const actorKey ctxKey = iota

// AuthMiddleware resolves the caller's identity from a Bearer token.
type AuthMiddleware struct {
	tokenService outbound.TokenService
}

func NewAuthMiddleware(tokenService outbound.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService}
}

// Authenticate extracts and validates the request credential. It returns
// Unauthorized for a missing or invalid token.
func (m *AuthMiddleware) Authenticate(r *http.Request) (*inbound.Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperror.NewUnauthorized("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, apperror.NewUnauthorized("invalid authorization header format")
	}

	claims, err := m.tokenService.Validate(parts[1])
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}

	return &inbound.Actor{ID: claims.UserID, Role: claims.Role}, nil
}

// WithActor stores the authenticated actor in the request context.
func WithActor(ctx context.Context, actor *inbound.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or nil for requests that
// passed through the bootstrap bypass.
func ActorFromContext(ctx context.Context) *inbound.Actor {
	actor, _ := ctx.Value(actorKey).(*inbound.Actor)
	return actor
}
