package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/parikshasetu/api/database"
	"github.com/parikshasetu/api/handlers"
	attempt_handlers "github.com/parikshasetu/api/handlers/attempt"
	test_handlers "github.com/parikshasetu/api/handlers/test"
	"github.com/parikshasetu/api/services"
	"github.com/parikshasetu/api/utils/cache"
	"github.com/parikshasetu/api/utils/middleware"
	"gorm.io/gorm"
)

// SetupRoutes mounts the API surface. The Redis cache is shared with the
// cron manager; nil disables leaderboard caching.
func SetupRoutes(app *fiber.App, store database.Storage, redisCache *cache.RedisCache) {
	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize services
	testService := services.NewTestService(db)
	scoringService := services.NewScoringService(db, redisCache)

	// Initialize handlers
	testHandler := test_handlers.NewTestHandler(db, testService, scoringService)
	attemptHandler := attempt_handlers.NewAttemptHandler(scoringService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})

	// Health check
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 routes
	api := app.Group("/api/v1")

	tests := api.Group("/tests")
	tests.Post("/ingest", testHandler.CreateTest)       // Admin: ingest question + solution PDFs
	tests.Get("/", testHandler.ListTests)               // Public: list tests
	tests.Get("/:id", testHandler.GetTest)              // Public: get test (answers hidden while window open)
	tests.Post("/:id/reparse", testHandler.ReparseTest) // Admin: re-run extraction with corrected PDFs
	tests.Get("/:id/leaderboard", testHandler.GetLeaderboard)

	tests.Post("/:id/start", attemptHandler.StartAttempt)
	tests.Post("/:id/submit", attemptHandler.SubmitAttempt)
	tests.Get("/:id/attempts/me", attemptHandler.GetMyResult)
}
