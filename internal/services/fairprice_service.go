/**
 * @description
 * Fair price sync service.
 * Walks the property table in capped batches, runs the prediction pipeline,
 * and persists the resulting fair prices. Guarded by a Postgres advisory lock
 * so only one recompute runs at a time across instances.
 *
 * @dependencies
 * - backend/internal/models
 * - gorm.io/gorm
 * - github.com/jackc/pgconn (retryable error codes)
 */

package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgconn"
	"github.com/realvest-project/backend/internal/logger"
	"github.com/realvest-project/backend/internal/models"
	"gorm.io/gorm"
)

const fairPriceSyncLockKey = 7301

// FairPriceSyncResult reports one recompute pass.
type FairPriceSyncResult struct {
	Processed int              `json:"processed"`
	Updated   int              `json:"updated"`
	Status    PredictionStatus `json:"-"`
	// StatusLabel mirrors Status for JSON consumers.
	StatusLabel string `json:"status"`
}

// FairPriceSyncService recomputes fair prices over the whole property set.
type FairPriceSyncService struct {
	DB         *gorm.DB
	Prediction *PredictionService
	BatchSize  int
}

func NewFairPriceSyncService(db *gorm.DB, prediction *PredictionService, batchSize int) *FairPriceSyncService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &FairPriceSyncService{DB: db, Prediction: prediction, BatchSize: batchSize}
}

// Sync recomputes and persists fair prices for every property, in batches.
// A failing record update is logged and skipped; the pass continues.
func (s *FairPriceSyncService) Sync(ctx context.Context) (*FairPriceSyncResult, error) {
	unlock, err := s.acquireSyncLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire fair price sync lock: %w", err)
	}
	defer unlock()

	result := &FairPriceSyncResult{Status: StatusPredicted}
	var lastID uint64

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var batch []models.Property
		err := s.DB.WithContext(ctx).
			Where("property_id > ?", lastID).
			Order("property_id ASC").
			Limit(s.BatchSize).
			Find(&batch).Error
		if err != nil {
			return result, fmt.Errorf("failed to read property batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		lastID = batch[len(batch)-1].PropertyID

		fairPrices, status := s.Prediction.PredictFairPrices(batch)
		if status == StatusFallback {
			result.Status = StatusFallback
		}

		for i := range batch {
			if err := s.updateFairPrice(ctx, batch[i].PropertyID, fairPrices[i]); err != nil {
				logger.Error("Skipping fair price update for property %d: %v", batch[i].PropertyID, err)
				continue
			}
			result.Updated++
		}
		result.Processed += len(batch)
	}

	result.StatusLabel = result.Status.String()
	logger.Info("Fair price sync finished: processed=%d updated=%d status=%s",
		result.Processed, result.Updated, result.Status)
	return result, nil
}

// updateFairPrice persists one fair price, retrying serialization failures
// and deadlocks with jittered backoff.
func (s *FairPriceSyncService) updateFairPrice(ctx context.Context, id uint64, fairPrice float64) error {
	const maxRetries = 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.DB.WithContext(ctx).Model(&models.Property{}).
			Where("property_id = ?", id).
			Update("fair_price", fairPrice).Error
		if err == nil {
			return nil
		}

		if pgErr, ok := err.(*pgconn.PgError); ok && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		break
	}
	return err
}

func (s *FairPriceSyncService) acquireSyncLock(ctx context.Context) (func(), error) {
	const maxAttempts = 30

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var locked bool
		err := s.DB.WithContext(ctx).Raw("SELECT pg_try_advisory_lock(?)", fairPriceSyncLockKey).Scan(&locked).Error
		if err != nil {
			return nil, err
		}
		if locked {
			return func() {
				if err := s.DB.WithContext(ctx).Exec("SELECT pg_advisory_unlock(?)", fairPriceSyncLockKey).Error; err != nil {
					logger.Error("failed to release fair price sync lock: %v", err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		backoff := time.Duration(100+rand.Intn(150)) * time.Millisecond
		time.Sleep(backoff)
	}

	return nil, fmt.Errorf("timeout acquiring fair price sync lock")
}
