package handler

import (
	"errors"
	"testing"

	"github.com/staffhub/auth-service/internal/core/domain"
)

func TestValidator_FieldMessages(t *testing.T) {
	type req struct {
		EmpID    string `json:"empId" validate:"required"`
		Password string `json:"password" validate:"password"`
	}

	err := NewValidator().Validate(&req{Password: "abc"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if want := "empId is required; password is not an acceptable password"; ve.Message != want {
		t.Fatalf("expected %q, got %q", want, ve.Message)
	}
}

func TestValidator_RequestMessages(t *testing.T) {
	v := NewValidator()

	var ve *domain.ValidationError
	if err := v.Validate(&loginRequest{Identifier: "E1"}); !errors.As(err, &ve) || ve.Message != domain.MsgCredentialsRequired {
		t.Fatalf("login: unexpected error %v", err)
	}
	if err := v.Validate(&signupRequest{Name: "Eve", UserID: "E1", Password: "abc"}); !errors.As(err, &ve) || ve.Message != "Password must be at least 6 characters" {
		t.Fatalf("signup: unexpected error %v", err)
	}
	if err := v.Validate(&signupRequest{Name: "Eve", UserID: "E1", Password: "abcdef"}); err != nil {
		t.Fatalf("valid signup rejected: %v", err)
	}
}
