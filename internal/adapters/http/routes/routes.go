package routes

import (
	"finance-backoffice/internal/adapters/http/handlers"
	"finance-backoffice/internal/adapters/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Dashboard   *handlers.DashboardHandler
	Transaction *handlers.TransactionHandler
}

// Options configures route-level middleware
type Options struct {
	Tokens        middleware.AccessVerifier
	AuthRateLimit int
	// Gatherer backs /metrics; nil leaves the endpoint unmounted
	Gatherer prometheus.Gatherer
	// Swagger mounts /swagger/* when true
	Swagger bool
}

// Setup configures all routes for the application
func Setup(app *fiber.App, h Handlers, opts Options) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger documentation
	if opts.Swagger {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, h, opts)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h Handlers, opts Options) {
	auth := middleware.AuthMiddleware(opts.Tokens)

	// API Info
	router.Get("/", h.Health.APIInfo)

	// Auth routes (public except /me)
	authRoutes := router.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, h.Auth, auth, opts.AuthRateLimit)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard", auth)
	setupDashboardRoutes(dashboardRoutes, h.Dashboard)

	// Transaction routes
	transactionRoutes := router.Group("/transactions", auth)
	setupTransactionRoutes(transactionRoutes, h.Transaction)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler, rateLimit int) {
	limiter := middleware.AuthRateLimiter(rateLimit)

	// Public routes
	router.Post("/register", limiter, handler.Register)
	router.Post("/login", limiter, handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
}

// setupDashboardRoutes configures dashboard routes. Role checks happen in
// the service.
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/", handler.GetDashboard)
	router.Get("/summary", handler.GetSummary)
}

// setupTransactionRoutes configures transaction routes
func setupTransactionRoutes(router fiber.Router, handler *handlers.TransactionHandler) {
	router.Get("/", handler.ListTransactions)
	router.Post("/", handler.CreateTransaction)
	router.Get("/:id", handler.GetTransaction)
	router.Put("/:id", handler.UpdateTransaction)
	router.Delete("/:id", handler.DeleteTransaction)
}
