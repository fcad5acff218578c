package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/identity-store/internal/api/docs"
	"github.com/99minutos/identity-store/internal/api/handler"
	"github.com/99minutos/identity-store/internal/api/middleware"
	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/infrastructure/http/handlers"
)

// Dependencies are the services and backends the router wires into handlers.
type Dependencies struct {
	Auth       ports.AuthService
	Roles      ports.RoleService
	Membership handler.MembershipQueue
	Store      handlers.Pinger
	Redis      *redis.Client // optional
	JWTSecret  string
	JWTIssuer  string
	Log        zerolog.Logger

	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
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
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity_http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	roleHandler := handler.NewRoleHandler(deps.Roles, deps.Membership)
	authenticated := middleware.Auth(deps.JWTSecret, deps.JWTIssuer)

	// --- Account routes ---
	apiGroup := e.Group("/api")
	apiGroup.POST("/register", authHandler.Register)
	apiGroup.POST("/login", authHandler.Login)

	me := apiGroup.Group("/me", authenticated, middleware.RBAC(domain.RoleUser, domain.RoleAdmin))
	me.GET("", authHandler.Me)
	me.PUT("/password", authHandler.ChangePassword)

	// --- Role administration (Admin only) ---
	adminOnly := []echo.MiddlewareFunc{authenticated, middleware.RBAC(domain.RoleAdmin)}

	roles := apiGroup.Group("/roles", adminOnly...)
	roles.POST("", roleHandler.Create)
	roles.GET("/:name", roleHandler.Get)
	roles.PUT("/id/:id", roleHandler.Rename)
	roles.DELETE("/id/:id", roleHandler.Delete)
	roles.GET("/:name/users", roleHandler.Users)
	roles.POST("/:name/members", roleHandler.Members)

	userRoles := apiGroup.Group("/users", adminOnly...)
	userRoles.PUT("/:id/roles/:name", roleHandler.AddUser)
	userRoles.DELETE("/:id/roles/:name", roleHandler.RemoveUser)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Store, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
