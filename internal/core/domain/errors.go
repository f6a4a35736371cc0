package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// Unique fields of an account, as named by DuplicateKeyError.
const (
	FieldEmpID = "empId"
	FieldEmail = "email"
)

// Messages for requests with missing fields.
const (
	MsgCredentialsRequired  = "Identifier and password are required"
	MsgSignupFieldsRequired = "Name, userId and password are required"
)

// ValidationError reports missing or malformed input detected before any
// store access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError carrying msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// DuplicateKeyError is returned by credential stores when an insert violates
// a uniqueness constraint. Field is empty when the store could not tell which
// constraint fired.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return "duplicate key: " + e.Field
}

// DuplicateAccountError is the workflow-level conflict returned by signup.
// Field is set only when the conflict was reported by the store at insert
// time and the offending constraint is known.
type DuplicateAccountError struct {
	Field string
}

func (e *DuplicateAccountError) Error() string {
	if e.Field == "" {
		return ErrDuplicateAccount.Error()
	}
	return ErrDuplicateAccount.Error() + ": " + e.Field
}

func (e *DuplicateAccountError) Is(target error) bool {
	return target == ErrDuplicateAccount
}
