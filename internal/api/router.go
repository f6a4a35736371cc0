package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/staffhub/auth-service/docs"
	"github.com/staffhub/auth-service/internal/api/handler"
	"github.com/staffhub/auth-service/internal/api/metrics"
	"github.com/staffhub/auth-service/internal/api/middleware"
	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is wired to.
type Dependencies struct {
	Auth      ports.AuthService
	Accounts  ports.AccountReader
	JWTSecret string
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.DependencyCheck
	// Registry receives HTTP and auth metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Auth routes, also served under the legacy /api prefix ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Accounts)
	requireAuth := middleware.Auth(deps.JWTSecret)

	for _, prefix := range []string{"", "/api"} {
		auth := e.Group(prefix + "/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/signup", authHandler.Signup)
		auth.GET("/me", userHandler.Me, requireAuth)
	}

	users := e.Group("/users", requireAuth, middleware.RBAC(domain.RoleAdmin, domain.RoleCSuite, domain.RoleHR))
	users.GET("/:empId", userHandler.GetByEmpID)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)                      // liveness  – is the process alive?
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Checks).Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
