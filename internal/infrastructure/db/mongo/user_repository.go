package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staffhub/auth-service/internal/core/domain"
)

const usersCollection = "users"

const (
	indexEmpID    = "emp_id_1"
	indexEmail    = "email_1"
	indexClientID = "client_id_1"
)

// UserRepository is the MongoDB-backed credential store.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EmpID     string             `bson:"emp_id"`
	ClientID  string             `bson:"client_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name,omitempty"`
	Role      string             `bson:"role"`
	Password  string             `bson:"password"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		EmpID:     u.EmpID,
		ClientID:  u.ClientID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Password:  u.PasswordHash,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		EmpID:        mu.EmpID,
		ClientID:     mu.ClientID,
		Email:        mu.Email,
		Name:         mu.Name,
		Role:         domain.Role(mu.Role),
		PasswordHash: mu.Password,
		IsActive:     mu.IsActive,
		CreatedAt:    mu.CreatedAt.UTC(),
		UpdatedAt:    mu.UpdatedAt.UTC(),
	}
}

// Create inserts a new account. Unique index violations are reported as
// *domain.DuplicateKeyError naming the offending field.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u := *user
	u.Normalize()
	if !u.Role.Valid() {
		return nil, fmt.Errorf("insert user: invalid role %q", u.Role)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt, u.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, toMongoUser(&u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.DuplicateKeyError{Field: duplicateField(err)}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	u.ID = oid.Hex()
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *UserRepository) FindByEmpID(ctx context.Context, empID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"emp_id": empID}, nil)
}

// FindByClientID returns the oldest account carrying clientID, since the
// field is not unique.
func (r *UserRepository) FindByClientID(ctx context.Context, clientID string) (*domain.User, error) {
	if clientID == "" {
		return nil, domain.ErrUserNotFound
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.findOne(ctx, bson.M{"client_id": clientID}, opts)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter, findOpts...).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// EnsureIndexes creates the unique indexes that back the store's uniqueness
// guarantees. Concurrent signups rely on them.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "emp_id", Value: 1}}, Options: options.Index().SetName(indexEmpID).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}}, Options: options.Index().SetName(indexClientID)},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// duplicateField maps a duplicate key error to the account field whose
// unique index fired. It prefers the structured keyPattern the server
// attaches and falls back to the index name in the message.
func duplicateField(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if f := fieldFromKeyPattern(e.Raw); f != "" {
				return f
			}
			if f := fieldFromMessage(e.Message); f != "" {
				return f
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return fieldFromMessage(ce.Message)
	}
	return ""
}

func fieldFromKeyPattern(raw bson.Raw) string {
	if len(raw) == 0 {
		return ""
	}
	val, err := raw.LookupErr("keyPattern")
	if err != nil {
		return ""
	}
	doc, ok := val.DocumentOK()
	if !ok {
		return ""
	}
	elems, err := doc.Elements()
	if err != nil {
		return ""
	}
	for _, el := range elems {
		switch el.Key() {
		case "emp_id":
			return domain.FieldEmpID
		case "email":
			return domain.FieldEmail
		}
	}
	return ""
}

func fieldFromMessage(msg string) string {
	switch {
	case strings.Contains(msg, indexEmpID):
		return domain.FieldEmpID
	case strings.Contains(msg, indexEmail):
		return domain.FieldEmail
	}
	return ""
}
