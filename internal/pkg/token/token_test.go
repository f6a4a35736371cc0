package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueParse_RoundTrip(t *testing.T) {
	signed, err := Issue("abc123", "hr", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := Parse(signed, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "abc123" || claims.Role != "hr" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(time.Now()) > time.Hour {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	signed, err := Issue("abc123", "", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(signed, "other"); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	signed, err := Issue("abc123", "", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(signed, "secret"); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		ID:               "abc123",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	})
	signed, err := tkn.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(signed, "secret"); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestIssue_EmptySecret(t *testing.T) {
	if _, err := Issue("abc123", "", "", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
