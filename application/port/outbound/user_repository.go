package outbound

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/domain"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// Count reports the system-wide identity count, used by the bootstrap
	// bypass. It must hit the store on every call, never a cached value.
	Count(ctx context.Context) (int, error)
}
