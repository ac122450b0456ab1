package routes

import (
	"context"
	"time"

	"kas-kelas/internal/adapters/http/handlers"
	"kas-kelas/internal/adapters/http/middleware"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/config"
	"kas-kelas/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler mounted by Register
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Bill        *handlers.BillHandler
	Transaction *handlers.TransactionHandler
	Report      *handlers.ReportHandler
	Dashboard   *handlers.DashboardHandler
}

// Setup configures all routes for the application. cache may be nil.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, cache services.Cache) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	billRepo := repositories.NewBillRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	txManager := repositories.NewTxManager(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo, cfg.Kas.DefaultPassword)
	billService := services.NewBillService(
		billRepo,
		userRepo,
		txManager,
		cache,
		time.Duration(cfg.Redis.UpcomingTTLSecs)*time.Second,
	)
	transactionService := services.NewTransactionService(transactionRepo)
	reportService := services.NewReportService(transactionRepo)
	dashboardService := services.NewDashboardService(billRepo, transactionRepo, userRepo)

	// Health probes
	checks := map[string]handlers.HealthCheck{
		"database": config.HealthCheck,
	}
	if pinger, ok := cache.(interface{ Ping(ctx context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}

	// Initialize handlers
	h := &Handlers{
		Health:      handlers.NewHealthHandler(cfg.AppMode, checks),
		Auth:        handlers.NewAuthHandler(authService, cfg),
		User:        handlers.NewUserHandler(userService),
		Bill:        handlers.NewBillHandler(billService),
		Transaction: handlers.NewTransactionHandler(transactionService),
		Report:      handlers.NewReportHandler(reportService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
	}

	Register(app, h, authService)
}

// Register mounts the handlers on app. tokens validates access tokens for
// every authenticated route.
func Register(app *fiber.App, h *Handlers, tokens middleware.TokenValidator) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, h, middleware.AuthMiddleware(tokens))
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h *Handlers, auth fiber.Handler) {
	// API Info
	router.Get("/", h.Health.APIInfo)

	// Auth routes
	setupAuthRoutes(router.Group("/auth"), h, auth)

	// Public routes
	public := router.Group("/public")
	public.Get("/upcoming-bills", middleware.CacheControl(30*time.Second), h.Bill.UpcomingBills)

	// Everything below requires a valid access token
	profile := router.Group("/profile", auth, middleware.NoCacheHeaders())
	profile.Put("/password", middleware.StrictRateLimiter(), h.User.ChangePassword)

	router.Get("/dashboard", auth, middleware.PrivateCacheHeaders(30*time.Second), h.Dashboard.GetDashboard)

	setupBillRoutes(router.Group("/bills", auth, middleware.NoCacheHeaders()), h)
	setupTransactionRoutes(router.Group("/transactions", auth, middleware.NoCacheHeaders()), h)
	setupReportRoutes(router, h, auth)
	setupUserRoutes(router, h, auth)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *Handlers, auth fiber.Handler) {
	router.Post("/login", middleware.AuthRateLimiter(), h.Auth.Login)
	router.Post("/refresh", h.Auth.RefreshToken)
	router.Post("/logout", h.Auth.Logout)

	// Protected
	router.Get("/me", auth, h.User.GetProfile)
	router.Post("/logout-all", auth, h.Auth.LogoutAll)
}

// setupBillRoutes configures bill routes
func setupBillRoutes(router fiber.Router, h *Handlers) {
	router.Get("/", h.Bill.ListBills)
	router.Post("/", middleware.TreasurerOnly(), h.Bill.CreateBillBatch)
	router.Post("/:id/claim-paid", h.Bill.ClaimPaid)
	router.Post("/:id/pay", middleware.TreasurerOnly(), h.Bill.Pay)
	router.Post("/:id/unverify", middleware.TreasurerOnly(), h.Bill.Unverify)
}

// setupTransactionRoutes configures cash ledger routes
func setupTransactionRoutes(router fiber.Router, h *Handlers) {
	router.Get("/", h.Transaction.ListTransactions)
	router.Get("/:id", h.Transaction.GetTransaction)

	// Treasurer or administrator
	router.Post("/", middleware.TreasurerOrAdmin(), h.Transaction.CreateTransaction)
	router.Put("/:id", middleware.TreasurerOrAdmin(), h.Transaction.UpdateTransaction)
	router.Delete("/:id", middleware.TreasurerOrAdmin(), h.Transaction.DeleteTransaction)
}

// setupReportRoutes configures report and export routes (treasurer only)
func setupReportRoutes(router fiber.Router, h *Handlers, auth fiber.Handler) {
	router.Get("/reports/summary", auth, middleware.TreasurerOnly(), middleware.NoCacheHeaders(), h.Report.Summary)
	router.Get("/export/rekap", auth, middleware.TreasurerOnly(), middleware.NoCacheHeaders(), h.Report.ExportRekap)
}

// setupUserRoutes configures account management routes
func setupUserRoutes(router fiber.Router, h *Handlers, auth fiber.Handler) {
	users := router.Group("/users", auth, middleware.NoCacheHeaders())
	users.Get("/", middleware.TreasurerOrAdmin(), h.User.ListUsers)
	users.Post("/:id/reset-password", middleware.AdminOnly(), middleware.StrictRateLimiter(), h.User.ResetPassword)

	members := router.Group("/members", auth, middleware.TreasurerOrAdmin(), middleware.NoCacheHeaders())
	members.Get("/", h.User.ListMembers)
	members.Post("/", h.User.CreateMember)
	members.Delete("/:id", h.User.DeleteMember)
}
