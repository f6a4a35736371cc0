package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/staffhub/auth-service/internal/core/domain"
)

const (
	keyPrefix = "staffhub:user:"
	opTimeout = 2 * time.Second
)

// createScript inserts an account and its index keys in one atomic step.
// Returns 0 on success, 1 when empId is taken, 2 when email is taken.
//
// KEYS: emp index, email index, account hash, [client index]
// ARGV: id, created-at score, hash field/value pairs...
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 1 end
if redis.call('EXISTS', KEYS[2]) == 1 then return 2 end
redis.call('HSET', KEYS[3], unpack(ARGV, 3))
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[1])
if KEYS[4] then redis.call('ZADD', KEYS[4], ARGV[2], ARGV[1]) end
return 0
`)

// UserStore is a credential store backed by Redis hashes. Uniqueness of
// empId and email is held by dedicated index keys guarded by createScript.
//
// Key layout:
//
//	staffhub:user:<id>               hash with the account fields
//	staffhub:user:emp:<empId>        -> id
//	staffhub:user:email:<email>      -> id
//	staffhub:user:client:<clientId>  zset of ids scored by creation time
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

func accountKey(id string) string      { return keyPrefix + id }
func empKey(empID string) string       { return keyPrefix + "emp:" + empID }
func emailKey(email string) string     { return keyPrefix + "email:" + email }
func clientKey(clientID string) string { return keyPrefix + "client:" + clientID }

// Create inserts a new account.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	u := *user
	u.Normalize()
	if !u.Role.Valid() {
		return nil, fmt.Errorf("insert user: invalid role %q", u.Role)
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	keys := []string{empKey(u.EmpID), emailKey(u.Email), accountKey(u.ID)}
	if u.ClientID != "" {
		keys = append(keys, clientKey(u.ClientID))
	}
	args := []interface{}{u.ID, now.UnixMilli()}
	for field, value := range toHash(&u) {
		args = append(args, field, value)
	}

	res, err := createScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	switch res {
	case 1:
		return nil, &domain.DuplicateKeyError{Field: domain.FieldEmpID}
	case 2:
		return nil, &domain.DuplicateKeyError{Field: domain.FieldEmail}
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.load(ctx, id)
}

func (s *UserStore) FindByEmpID(ctx context.Context, empID string) (*domain.User, error) {
	return s.findByIndex(ctx, empKey(empID))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findByIndex(ctx, emailKey(email))
}

// FindByClientID returns the oldest account carrying clientID.
func (s *UserStore) FindByClientID(ctx context.Context, clientID string) (*domain.User, error) {
	if clientID == "" {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ids, err := s.client.ZRange(ctx, clientKey(clientID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return s.load(ctx, ids[0])
}

func (s *UserStore) findByIndex(ctx context.Context, key string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.load(ctx, id)
}

func (s *UserStore) load(ctx context.Context, id string) (*domain.User, error) {
	fields, err := s.client.HGetAll(ctx, accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return fromHash(id, fields)
}

func toHash(u *domain.User) map[string]string {
	active := "0"
	if u.IsActive {
		active = "1"
	}
	return map[string]string{
		"emp_id":     u.EmpID,
		"client_id":  u.ClientID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       string(u.Role),
		"password":   u.PasswordHash,
		"is_active":  active,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromHash(id string, h map[string]string) (*domain.User, error) {
	created, err := time.Parse(time.RFC3339Nano, h["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode user %s: created_at: %w", id, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, h["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("decode user %s: updated_at: %w", id, err)
	}
	return &domain.User{
		ID:           id,
		EmpID:        h["emp_id"],
		ClientID:     h["client_id"],
		Email:        h["email"],
		Name:         h["name"],
		Role:         domain.Role(h["role"]),
		PasswordHash: h["password"],
		IsActive:     h["is_active"] == "1",
		CreatedAt:    created.UTC(),
		UpdatedAt:    updated.UTC(),
	}, nil
}
