// Package db selects and opens the credential store backend named in the
// configuration.
package db

import (
	"context"
	"fmt"

	"github.com/staffhub/auth-service/internal/api/handler"
	"github.com/staffhub/auth-service/internal/core/ports"
	mongostore "github.com/staffhub/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/staffhub/auth-service/internal/infrastructure/db/redis"
	"github.com/staffhub/auth-service/internal/pkg/config"
	"github.com/staffhub/auth-service/pkg/logger"
)

// Store is an opened credential store plus what the process needs to
// probe and release it.
type Store struct {
	ports.CredentialStore
	Checks map[string]handler.DependencyCheck
	Close  func(ctx context.Context) error
}

// Open connects to the backend selected by cfg.StoreBackend. For MongoDB it
// also makes sure the unique indexes exist. logger.Init must have run.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	log := logger.Get().With().Str("component", "store").Logger()
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo credential store ready")
		return &Store{
			CredentialStore: repo,
			Checks:          map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(database)},
			Close:           client.Disconnect,
		}, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis credential store ready")
		return &Store{
			CredentialStore: redisstore.NewUserStore(client),
			Checks:          map[string]handler.DependencyCheck{"redis": handler.RedisCheck(client)},
			Close:           func(context.Context) error { return client.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
