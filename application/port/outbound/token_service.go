package outbound

import "github.com/leadvault/leadvault/domain"

type TokenClaims struct {
	UserID int64
	Role   domain.Role
}

type TokenService interface {
	Generate(claims TokenClaims) (string, error)
	Validate(token string) (*TokenClaims, error)
}
