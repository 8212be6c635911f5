/**
 * @description
 * Worker Service Entry Point.
 * Responsible for background tasks:
 * 1. Periodic fair price recompute over the full property set.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/services
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/realvest-project/backend/internal/config"
	"github.com/realvest-project/backend/internal/db"
	"github.com/realvest-project/backend/internal/logger"
	"github.com/realvest-project/backend/internal/services"
)

func main() {
	logger.Info("🔥 Starting RealVest Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	// 3. Initialize Services
	predictionService := services.NewPredictionService(cfg.Model.Path)
	fairPriceSync := services.NewFairPriceSyncService(pgDB, predictionService, cfg.FairPrice.BatchSize)

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Recompute Loop
	go func() {
		ticker := time.NewTicker(cfg.FairPrice.SyncInterval)
		defer ticker.Stop()

		// Initial pass on startup
		runSync(ctx, fairPriceSync)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSync(ctx, fairPriceSync)
			}
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	time.Sleep(1 * time.Second) // Give the in-flight batch time to finish
	logger.Info("Worker exited.")
}

func runSync(ctx context.Context, sync *services.FairPriceSyncService) {
	logger.Info("🔄 Running fair price sync...")

	result, err := sync.Sync(ctx)
	if err != nil {
		logger.Error("Fair price sync failed: %v", err)
		return
	}
	logger.Info("Fair price sync done: processed=%d updated=%d status=%s",
		result.Processed, result.Updated, result.Status)
}
