/**
 * @description
 * API Route definitions.
 * Sets up the router groups and assigns handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/api/middleware
 * - backend/internal/services
 */

package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/realvest-project/backend/internal/api/handlers"
	"github.com/realvest-project/backend/internal/api/middleware"
	"github.com/realvest-project/backend/internal/config"
	"github.com/realvest-project/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Middleware
	if err := middleware.InitAuthMiddleware(cfg); err != nil {
		log.Printf("Failed to init auth middleware: %v", err)
		// We don't panic here to allow app to start in dev modes without valid keys,
		// but protected routes will fail.
	}

	// 2. Initialize Services
	propertyService := services.NewPropertyService(db, rdb)
	scoringService := services.NewScoringService()
	marketService := services.NewMarketService(db)
	predictionService := services.NewPredictionService(cfg.Model.Path)
	fairPriceSync := services.NewFairPriceSyncService(db, predictionService, cfg.FairPrice.BatchSize)

	// 3. Initialize Handlers
	propertyHandler := handlers.NewPropertyHandler(propertyService, scoringService)
	analysisHandler := handlers.NewAnalysisHandler(propertyService, scoringService)
	marketHandler := handlers.NewMarketHandler(marketService, propertyService)
	adminHandler := handlers.NewAdminHandler(fairPriceSync)

	// 4. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Public Routes
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Property Routes (Public)
	properties := v1.Group("/properties")
	properties.Get("/", propertyHandler.SearchProperties)
	properties.Get("/:id", propertyHandler.GetProperty)
	properties.Get("/:id/score", propertyHandler.GetPropertyScore)

	v1.Get("/opportunities", propertyHandler.GetOpportunities)

	// Analysis Routes (Public)
	analysis := v1.Group("/analysis")
	analysis.Get("/roi", analysisHandler.GetROIAnalysis)
	analysis.Get("/heatmap", analysisHandler.GetHeatmap)

	// Market Routes (Public)
	market := v1.Group("/market")
	market.Get("/metrics", marketHandler.GetMarketMetrics)
	market.Get("/competition/:id", marketHandler.GetCompetition)

	// Admin Routes (Protected)
	admin := v1.Group("/admin", middleware.Protected())
	admin.Post("/recompute", adminHandler.RecomputeFairPrices)
}
