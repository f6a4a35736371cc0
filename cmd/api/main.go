// @title        Staffhub Auth API
// @version      1.0
// @description  Login and signup for staffhub accounts.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/staffhub/auth-service/internal/api"
	"github.com/staffhub/auth-service/internal/core/service"
	"github.com/staffhub/auth-service/internal/infrastructure/db"
	"github.com/staffhub/auth-service/internal/pkg/config"
	"github.com/staffhub/auth-service/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open credential store")
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing credential store")
		}
	}()

	authSvc := service.NewAuthService(store, service.Config{
		TokenSigningKey:   cfg.Auth.JWTSecret,
		TokenExpiry:       cfg.Auth.JWTExpire,
		EmailDomainSuffix: cfg.Auth.EmailDomain,
		PasswordHashCost:  cfg.Auth.BcryptCost,
	}, log.With().Str("component", "auth").Logger())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e, err := api.NewRouter(api.Dependencies{
		Auth:      authSvc,
		Accounts:  authSvc,
		JWTSecret: cfg.Auth.JWTSecret,
		Checks:    store.Checks,
		Registry:  reg,
		Logger:    log,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build router")
		os.Exit(1)
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("auth api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("auth api stopped")
}
