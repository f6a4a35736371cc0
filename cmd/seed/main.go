// Command seed makes sure the shared QA account exists. It prints the
// plaintext password when it creates the account; never point it at a
// production database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/staffhub/auth-service/internal/core/service"
	"github.com/staffhub/auth-service/internal/infrastructure/db"
	"github.com/staffhub/auth-service/internal/pkg/config"
	"github.com/staffhub/auth-service/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to open credential store")
		os.Exit(1)
	}
	defer func() { _ = store.Close(context.Background()) }()

	res, err := service.EnsureTestAccount(ctx, store, cfg.Auth.BcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("seeding test account failed")
		_ = store.Close(context.Background())
		os.Exit(1)
	}

	if !res.Created {
		log.Info().Str("emp_id", res.User.EmpID).Msg("test account already exists")
		return
	}

	log.Info().
		Str("emp_id", res.User.EmpID).
		Str("client_id", res.User.ClientID).
		Str("email", res.User.Email).
		Str("role", string(res.User.Role)).
		Msg("test account created")
	fmt.Printf("login password: %s\n", service.SeedPassword)
}
