package ports

import (
	"context"

	"github.com/staffhub/auth-service/internal/core/domain"
)

// CredentialStore defines persistence for user accounts.
//
// Find* methods return domain.ErrUserNotFound when nothing matches.
// Create returns *domain.DuplicateKeyError when the insert would break the
// uniqueness of empId or email; the check must be atomic with the write.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmpID(ctx context.Context, empID string) (*domain.User, error)
	FindByClientID(ctx context.Context, clientID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
