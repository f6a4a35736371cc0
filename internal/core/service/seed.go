package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/ports"
)

// Fixed test account created by the seed command. The plaintext password is
// only meant for local and QA environments.
const (
	SeedEmpID    = "E123"
	SeedClientID = "C456"
	SeedEmail    = "test@exmp.com"
	SeedName     = "Test Ur"
	SeedPassword = "Test@1234"
)

// SeedResult describes what EnsureTestAccount did.
type SeedResult struct {
	User    *domain.User
	Created bool
}

// EnsureTestAccount creates the seed account unless one with SeedEmpID
// already exists. Running it twice is a no-op.
func EnsureTestAccount(ctx context.Context, store ports.CredentialStore, cost int) (*SeedResult, error) {
	existing, err := store.FindByEmpID(ctx, SeedEmpID)
	if err == nil {
		return &SeedResult{User: existing}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("seed: lookup: %w", err)
	}

	if cost == 0 {
		cost = DefaultPasswordHashCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("seed: hash password: %w", err)
	}

	created, err := store.Create(ctx, &domain.User{
		EmpID:        SeedEmpID,
		ClientID:     SeedClientID,
		Email:        SeedEmail,
		Name:         SeedName,
		Role:         domain.RoleEmployee,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if err != nil {
		var dup *domain.DuplicateKeyError
		if errors.As(err, &dup) && dup.Field == domain.FieldEmpID {
			// Another seeder won the race.
			existing, err := store.FindByEmpID(ctx, SeedEmpID)
			if err != nil {
				return nil, fmt.Errorf("seed: reload: %w", err)
			}
			return &SeedResult{User: existing}, nil
		}
		return nil, fmt.Errorf("seed: create: %w", err)
	}
	return &SeedResult{User: created, Created: true}, nil
}
