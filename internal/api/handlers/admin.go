/**
 * @description
 * Admin API Handlers.
 * Exposes the operator-triggered fair price recompute.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/realvest-project/backend/internal/api/middleware"
	"github.com/realvest-project/backend/internal/logger"
	"github.com/realvest-project/backend/internal/services"
)

type AdminHandler struct {
	FairPriceSync *services.FairPriceSyncService
}

func NewAdminHandler(sync *services.FairPriceSyncService) *AdminHandler {
	return &AdminHandler{FairPriceSync: sync}
}

// RecomputeFairPrices runs a full fair price recompute pass in the background
// POST /api/v1/admin/recompute
func (h *AdminHandler) RecomputeFairPrices(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	logger.Info("Fair price recompute requested by %s", userID)

	go func() {
		if _, err := h.FairPriceSync.Sync(context.Background()); err != nil {
			logger.Error("Fair price recompute failed: %v", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "recompute started"})
}
