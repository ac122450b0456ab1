package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kas-kelas/internal/adapters/cache"
	"kas-kelas/internal/adapters/http/middleware"
	"kas-kelas/internal/adapters/http/routes"
	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/config"
	"kas-kelas/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	_ "kas-kelas/docs" // Swagger docs
)

// @title Kas Kelas API
// @version 1.0
// @description API kas kelas: tagihan anggota, verifikasi pembayaran, pencatatan kas dan rekap.

// @contact.name API Support
// @contact.email bendahara@infor24

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Money is rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Due dates and report ranges are calendar days in one zone
	time.Local = cfg.Location
	log.Printf("🕒 Calendar timezone: %s", cfg.Location)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default accounts
	seeder := config.NewSeeder(db, cfg.Kas)
	if err := seeder.Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Optional Redis cache for the public listing
	var billCache services.Cache
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Printf("⚠️ Redis unavailable, running without cache: %v", err)
		} else {
			billCache = redisCache
			defer redisCache.Close()
		}
	}

	// Start Cron Service for refresh token cleanup
	cronService := services.NewCronService(repositories.NewRefreshTokenRepository(db), cfg.Kas.TokenCleanupSchedule)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Kas Kelas API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, billCache)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
