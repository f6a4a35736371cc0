package ports

import (
	"context"

	"github.com/staffhub/auth-service/internal/core/domain"
)

// AuthResult is returned by a successful login or signup.
type AuthResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type AuthService interface {
	Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error)
	Register(ctx context.Context, name, identifier, password string) (*AuthResult, error)
}

// AccountReader serves read-only account lookups for authenticated callers.
type AccountReader interface {
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
	LookupByEmpID(ctx context.Context, empID string) (*domain.PublicUser, error)
}
