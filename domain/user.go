package domain

import "time"

type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Privileged reports whether the role may bypass ownership checks.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

func ParseRole(input string) (Role, bool) {
	switch Role(input) {
	case RoleAgent, RoleAdmin:
		return Role(input), true
	}
	return "", false
}

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
