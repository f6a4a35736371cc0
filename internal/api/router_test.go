package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/service"
	"github.com/staffhub/auth-service/internal/pkg/token"
)

const testSecret = "router-secret"

type memStore struct {
	mu    sync.Mutex
	users []*domain.User
	err   error
}

func (s *memStore) find(match func(*domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.ID == id })
}

func (s *memStore) FindByEmpID(_ context.Context, empID string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.EmpID == empID })
}

func (s *memStore) FindByClientID(_ context.Context, clientID string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return clientID != "" && u.ClientID == clientID })
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Email == email })
}

func (s *memStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	u.Normalize()
	for _, existing := range s.users {
		if existing.EmpID == u.EmpID {
			return nil, &domain.DuplicateKeyError{Field: domain.FieldEmpID}
		}
		if existing.Email == u.Email {
			return nil, &domain.DuplicateKeyError{Field: domain.FieldEmail}
		}
	}
	u.ID = fmt.Sprintf("u%d", len(s.users)+1)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users = append(s.users, &u)
	clone := u
	return &clone, nil
}

func (s *memStore) insert(t *testing.T, u domain.User, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u.PasswordHash = string(hash)
	created, err := s.Create(context.Background(), &u)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return created
}

func newTestRouter(t *testing.T, store *memStore) *echo.Echo {
	t.Helper()
	svc := service.NewAuthService(store, service.Config{
		TokenSigningKey:   testSecret,
		EmailDomainSuffix: "@corp.test",
		PasswordHashCost:  bcrypt.MinCost,
	}, zerolog.Nop())

	e, err := NewRouter(Dependencies{
		Auth:      svc,
		Accounts:  svc,
		JWTSecret: testSecret,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return e
}

func do(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
	Error string            `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) authBody {
	t.Helper()
	var b authBody
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return b
}

func TestRouter_SignupThenLogin(t *testing.T) {
	e := newTestRouter(t, &memStore{})

	rec := do(e, http.MethodPost, "/auth/signup", `{"name":"Eve","userId":"E001","password":"abcdef"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", rec.Code, rec.Body)
	}
	signup := decode(t, rec)
	if signup.User.Email != "e001@corp.test" || signup.User.Role != domain.RoleEmployee {
		t.Fatalf("unexpected user: %+v", signup.User)
	}

	rec = do(e, http.MethodPost, "/api/auth/login", `{"identifier":"E001@CORP.TEST","password":"abcdef"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body)
	}
	login := decode(t, rec)
	claims, err := token.Parse(login.Token, testSecret)
	if err != nil || claims.ID != signup.User.ID {
		t.Fatalf("token does not carry account id: %+v %v", claims, err)
	}

	rec = do(e, http.MethodPost, "/auth/signup", `{"name":"Eve","userId":"e001","password":"abcdef"}`, "")
	if rec.Code != http.StatusBadRequest || decode(t, rec).Error != "User already exists" {
		t.Fatalf("duplicate: expected 400, got %d (%s)", rec.Code, rec.Body)
	}
}

func TestRouter_LoginErrors(t *testing.T) {
	store := &memStore{}
	store.insert(t, domain.User{EmpID: "E1", Email: "e1@corp.test", IsActive: true}, "abcdef")
	store.insert(t, domain.User{EmpID: "E2", Email: "e2@corp.test", IsActive: false}, "abcdef")
	e := newTestRouter(t, store)

	cases := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"wrong password", `{"identifier":"E1","password":"nope-nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown", `{"identifier":"ghost","password":"nope-nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"inactive", `{"identifier":"E2","password":"abcdef"}`, http.StatusForbidden, "User is inactive"},
		{"missing password", `{"identifier":"E1"}`, http.StatusBadRequest, "Identifier and password are required"},
		{"empty body", `{}`, http.StatusBadRequest, "Identifier and password are required"},
		{"padded empId", `{"identifier":" E1","password":"abcdef"}`, http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tc := range cases {
		rec := do(e, http.MethodPost, "/auth/login", tc.body, "")
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.code, rec.Code, rec.Body)
		}
		if got := decode(t, rec).Error; got != tc.msg {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.msg, got)
		}
	}
}

func TestRouter_SignupValidationMessages(t *testing.T) {
	store := &memStore{}
	e := newTestRouter(t, store)

	cases := []struct{ body, msg string }{
		{`{"name":"Eve"}`, "Name, userId and password are required"},
		{`{"name":"  ","userId":"E1","password":"abcdef"}`, "Name, userId and password are required"},
		{`{"name":"Eve","userId":"E1","password":"abc"}`, "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		rec := do(e, http.MethodPost, "/api/auth/signup", tc.body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (%s)", tc.body, rec.Code, rec.Body)
		}
		if got := decode(t, rec).Error; got != tc.msg {
			t.Fatalf("%s: expected %q, got %q", tc.body, tc.msg, got)
		}
	}
}

func TestRouter_InternalErrorIsOpaque(t *testing.T) {
	store := &memStore{err: errors.New("mongo: connection pool closed")}
	e := newTestRouter(t, store)

	rec := do(e, http.MethodPost, "/auth/login", `{"identifier":"E1","password":"abcdef"}`, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decode(t, rec).Error; got != "Server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	store := &memStore{}
	hr := store.insert(t, domain.User{EmpID: "H1", Email: "h1@corp.test", Role: domain.RoleHR, IsActive: true}, "abcdef")
	emp := store.insert(t, domain.User{EmpID: "E1", Email: "e1@corp.test", IsActive: true}, "abcdef")
	e := newTestRouter(t, store)

	hrToken, err := token.Issue(hr.ID, string(hr.Role), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	empToken, err := token.Issue(emp.ID, string(emp.Role), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rec := do(e, http.MethodGet, "/auth/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/auth/me", "", empToken)
	if rec.Code != http.StatusOK || decode(t, rec).User.EmpID != "E1" {
		t.Fatalf("me: unexpected response %d %s", rec.Code, rec.Body)
	}

	if rec := do(e, http.MethodGet, "/users/E1", "", empToken); rec.Code != http.StatusForbidden {
		t.Fatalf("employee lookup: expected 403, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/users/E1", "", hrToken); rec.Code != http.StatusOK {
		t.Fatalf("hr lookup: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/users/E404", "", hrToken); rec.Code != http.StatusNotFound {
		t.Fatalf("missing lookup: expected 404, got %d", rec.Code)
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	e := newTestRouter(t, &memStore{})

	do(e, http.MethodPost, "/auth/login", `{"identifier":"x","password":"y"}`, "")

	rec := do(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "staffhub_auth_login_attempts_total") {
		t.Fatalf("metrics output missing login counter")
	}

	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}
