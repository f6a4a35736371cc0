package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/ports"
	"github.com/staffhub/auth-service/internal/pkg/token"
)

const (
	DefaultTokenExpiry       = 7 * 24 * time.Hour
	DefaultEmailDomainSuffix = "@staffhub.local"
	DefaultPasswordHashCost  = 10
)

// Config holds everything the auth workflow needs besides the store.
type Config struct {
	TokenSigningKey   string
	TokenExpiry       time.Duration
	EmailDomainSuffix string
	PasswordHashCost  int
}

func (c Config) withDefaults() Config {
	if c.TokenExpiry <= 0 {
		c.TokenExpiry = DefaultTokenExpiry
	}
	if c.EmailDomainSuffix == "" {
		c.EmailDomainSuffix = DefaultEmailDomainSuffix
	}
	if c.PasswordHashCost == 0 {
		c.PasswordHashCost = DefaultPasswordHashCost
	}
	return c
}

// AuthService implements login and signup against a CredentialStore.
type AuthService struct {
	store  ports.CredentialStore
	cfg    Config
	logger zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, cfg Config, logger zerolog.Logger) *AuthService {
	return &AuthService{store: store, cfg: cfg.withDefaults(), logger: logger}
}

type lookupFunc func(ctx context.Context, key string) (*domain.User, error)

// Authenticate resolves identifier as an empId, then a clientId, then an
// email, and verifies password against the first account found. Unknown
// identity and wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.NewValidationError(domain.MsgCredentialsRequired)
	}

	user, err := s.resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !user.IsActive {
		s.logger.Info().Str("user_id", user.ID).Msg("login rejected: account inactive")
		return nil, domain.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: compare password: %w", err)
	}

	result, err := s.result(user)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// resolve walks the lookup chain and returns the first match.
func (s *AuthService) resolve(ctx context.Context, identifier string) (*domain.User, error) {
	chain := []struct {
		find lookupFunc
		key  string
	}{
		{s.store.FindByEmpID, identifier},
		{s.store.FindByClientID, identifier},
		{s.store.FindByEmail, strings.ToLower(identifier)},
	}

	for _, step := range chain {
		user, err := step.find(ctx, step.key)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrUserNotFound
}

// Register creates an employee account whose email is derived from
// identifier and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, identifier, password string) (*ports.AuthResult, error) {
	name = strings.TrimSpace(name)
	identifier = strings.TrimSpace(identifier)
	if name == "" || identifier == "" || password == "" {
		return nil, domain.NewValidationError(domain.MsgSignupFieldsRequired)
	}
	if err := domain.CheckPassword(password); err != nil {
		return nil, err
	}

	email := s.emailFor(identifier)

	if taken, err := s.exists(ctx, s.store.FindByEmail, email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if taken {
		return nil, &domain.DuplicateAccountError{}
	}
	if taken, err := s.exists(ctx, s.store.FindByEmpID, identifier); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if taken {
		return nil, &domain.DuplicateAccountError{}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.store.Create(ctx, &domain.User{
		EmpID:        identifier,
		Email:        email,
		Name:         name,
		Role:         domain.RoleEmployee,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if err != nil {
		var dup *domain.DuplicateKeyError
		if errors.As(err, &dup) {
			s.logger.Info().Str("emp_id", identifier).Str("field", dup.Field).Msg("signup lost insert race")
			return nil, &domain.DuplicateAccountError{Field: dup.Field}
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.result(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.logger.Info().Str("user_id", created.ID).Str("emp_id", created.EmpID).Msg("user registered")
	return result, nil
}

func (s *AuthService) emailFor(identifier string) string {
	return strings.ToLower(identifier) + s.cfg.EmailDomainSuffix
}

func (s *AuthService) exists(ctx context.Context, find lookupFunc, key string) (bool, error) {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) result(user *domain.User) (*ports.AuthResult, error) {
	signed, err := token.Issue(user.ID, string(user.Role), s.cfg.TokenSigningKey, s.cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Token: signed, User: user.Public()}, nil
}

// Me returns the public view of the account behind an already verified
// token. Deactivated accounts are rejected.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	pub := user.Public()
	return &pub, nil
}

// LookupByEmpID returns the public view of the account with empID.
func (s *AuthService) LookupByEmpID(ctx context.Context, empID string) (*domain.PublicUser, error) {
	user, err := s.store.FindByEmpID(ctx, strings.TrimSpace(empID))
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}
