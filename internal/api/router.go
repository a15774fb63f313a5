package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/portfolio/workitems-api/docs"
	"github.com/portfolio/workitems-api/internal/api/handler"
	"github.com/portfolio/workitems-api/internal/api/metrics"
	"github.com/portfolio/workitems-api/internal/api/middleware"
	"github.com/portfolio/workitems-api/internal/core/ports"
	"github.com/portfolio/workitems-api/internal/pkg/config"
	"github.com/portfolio/workitems-api/internal/pkg/validation"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          zerolog.Logger
	AuthService     ports.AuthService
	WorkItemService ports.WorkItemService
	Tokens          ports.TokenValidator
	Validator       *validation.Validator
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = d.Validator
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Config.IsDevelopment())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  d.Config.AllowedOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderLocation},
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(metrics.Middleware())

	authHandler := handler.NewAuthHandler(d.AuthService)
	workItemHandler := handler.NewWorkItemHandler(d.WorkItemService)
	requireAuth := middleware.Auth(d.Tokens)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Work items: reads are public, mutations need a session ---
	items := e.Group("/api/work-items")
	items.GET("", workItemHandler.List)
	items.GET("/:id", workItemHandler.Get)
	items.POST("", workItemHandler.Create, requireAuth)
	items.PUT("/:id", workItemHandler.Update, requireAuth)
	items.DELETE("/:id", workItemHandler.Delete, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if d.Config.SwaggerEnabled {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}
