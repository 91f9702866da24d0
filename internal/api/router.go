package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/platformlab/identity-service/internal/api/handler"
	"github.com/platformlab/identity-service/internal/api/middleware"
	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
	"github.com/platformlab/identity-service/internal/infrastructure/http/handlers"
)

// Dependencies bundles everything the router needs wired in.
type Dependencies struct {
	Identity ports.IdentityService
	Tokens   ports.TokenService
	Audit    ports.AuditSink
	Mongo    *mongo.Database // nil in memory-store mode
	Redis    *redis.Client   // nil in memory-store mode
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Tokens, deps.Audit)
	userHandler := handler.NewUserHandler(deps.Identity, deps.Audit)
	authRequired := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/token/refresh", authHandler.Refresh)

	// --- User/role administration ---
	apiGroup := e.Group("/api", authRequired)
	apiGroup.GET("/users", userHandler.List, middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
	apiGroup.POST("/users", userHandler.Create, middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
	apiGroup.POST("/roles", userHandler.CreateRole, middleware.RequireRole(domain.RoleSuperAdmin))
	apiGroup.POST("/roles/assign", userHandler.AssignRole, middleware.RequireRole(domain.RoleSuperAdmin))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)

	if deps.Mongo != nil && deps.Redis != nil {
		healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
		e.GET("/health/ready", healthDepsHandler.Readiness)
	} else {
		// Memory mode has no external dependencies to probe.
		e.GET("/health/ready", healthHandler.Liveness)
	}

	return e
}
