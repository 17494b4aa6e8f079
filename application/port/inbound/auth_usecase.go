package inbound

import (
	"context"

	"github.com/leadvault/leadvault/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type ProvisionUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthUseCase interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// ProvisionUser creates an identity. While the system holds zero
	// identities any caller may provision (actor is nil); afterwards the
	// privileged role is required.
	ProvisionUser(ctx context.Context, actor *Actor, req ProvisionUserRequest) (*domain.User, error)
}
