package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the access level granted to an account.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCSuite       Role = "c-suite"
	RoleHR           Role = "hr"
	RoleManager      Role = "manager"
	RoleSuperManager Role = "supermanager"
	RoleTeamLead     Role = "tl"
	RoleEmployee     Role = "employee"
	RoleClient       Role = "client"
)

const (
	// MinPasswordLength is the shortest plaintext password accepted at
	// signup, counted in characters.
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest password bcrypt will hash.
	MaxPasswordBytes = 72
)

// CheckPassword applies the signup length rules to a plaintext password.
// It returns nil or a *ValidationError.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return NewValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return NewValidationError(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCSuite, RoleHR, RoleManager, RoleSuperManager, RoleTeamLead, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// User models an account that can log in.
type User struct {
	ID           string    `json:"id"`
	EmpID        string    `json:"empId"`
	ClientID     string    `json:"clientId,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the projection of a User that is safe to hand to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	EmpID    string `json:"empId"`
	ClientID string `json:"clientId,omitempty"`
	Role     Role   `json:"role"`
}

// Public returns the client-facing view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		EmpID:    u.EmpID,
		ClientID: u.ClientID,
		Role:     u.Role,
	}
}

// Normalize trims string fields, lowercases the email and fills defaults
// for role. Stores call it before every write.
func (u *User) Normalize() {
	u.EmpID = strings.TrimSpace(u.EmpID)
	u.ClientID = strings.TrimSpace(u.ClientID)
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleEmployee
	}
}

// NormalizeEmail returns the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
