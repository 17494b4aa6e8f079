package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/infrastructure/http/validator"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

type UseCase struct {
	users     outbound.UserRepository
	tokens    outbound.TokenService
	passwords outbound.PasswordService
	logger    logger.Logger
}

func NewUseCase(users outbound.UserRepository, tokens outbound.TokenService, passwords outbound.PasswordService, log logger.Logger) *UseCase {
	return &UseCase{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    log,
	}
}

var _ inbound.AuthUseCase = (*UseCase)(nil)

func (uc *UseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewInvalidInput("email and password are required")
	}

	user, err := uc.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		uc.logger.Error(ctx, "failed to look up user", err, map[string]interface{}{
			"operation": "login",
		})
		return nil, apperror.NewInternal()
	}

	if err := uc.passwords.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	token, err := uc.tokens.Generate(outbound.TokenClaims{UserID: user.ID, Role: user.Role})
	if err != nil {
		uc.logger.Error(ctx, "failed to sign token", err, map[string]interface{}{
			"operation": "login",
			"user_id":   user.ID,
		})
		return nil, apperror.NewInternal()
	}

	return &inbound.LoginResponse{Token: token, User: user}, nil
}

// ProvisionUser creates an identity. The bootstrap rule is re-checked against
// the store on every call: only while the identity count is exactly zero may
// an unauthenticated caller provision; afterwards admin is required.
func (uc *UseCase) ProvisionUser(ctx context.Context, actor *inbound.Actor, req inbound.ProvisionUserRequest) (*domain.User, error) {
	count, err := uc.users.Count(ctx)
	if err != nil {
		uc.logger.Error(ctx, "failed to count users", err, map[string]interface{}{
			"operation": "provision_user",
		})
		return nil, apperror.NewInternal()
	}

	if count > 0 {
		if actor == nil {
			return nil, apperror.NewUnauthorized("authentication required")
		}
		if !actor.Role.Privileged() {
			return nil, apperror.NewForbidden("admin access required")
		}
	}

	if !validator.ValidateEmail(req.Email) {
		return nil, apperror.NewInvalidInput("invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, apperror.NewInvalidInput("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperror.NewInvalidInput("fullName is required")
	}

	role := domain.RoleAgent
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, apperror.NewInvalidInput("unknown role")
		}
		role = parsed
	}
	// The very first identity is always the privileged one.
	if count == 0 {
		role = domain.RoleAdmin
	}

	hash, err := uc.passwords.Hash(req.Password)
	if err != nil {
		uc.logger.Error(ctx, "failed to hash password", err, map[string]interface{}{
			"operation": "provision_user",
		})
		return nil, apperror.NewInternal()
	}

	user, err := uc.users.Create(ctx, &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		uc.logger.Error(ctx, "failed to create user", err, map[string]interface{}{
			"operation": "provision_user",
		})
		return nil, apperror.NewInternal()
	}
	return user, nil
}
