/**
 * @description
 * Market API Handlers.
 * Exposes market-level metrics and per-listing competition analysis.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/realvest-project/backend/internal/services"
)

type MarketHandler struct {
	Market     *services.MarketService
	Properties *services.PropertyService
}

func NewMarketHandler(market *services.MarketService, properties *services.PropertyService) *MarketHandler {
	return &MarketHandler{Market: market, Properties: properties}
}

// GetMarketMetrics returns trends, demographics and economic indicators
// GET /api/v1/market/metrics
func (h *MarketHandler) GetMarketMetrics(c *fiber.Ctx) error {
	ctx := c.Context()

	location := c.Query("location")
	metrics, err := h.Market.GetMarketMetrics(ctx, location)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch market metrics",
		})
	}
	return c.JSON(metrics)
}

// GetCompetition returns similar-stock analysis for one listing
// GET /api/v1/market/competition/:id
func (h *MarketHandler) GetCompetition(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid property id"})
	}

	property, err := h.Properties.GetPropertyByID(ctx, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch property",
		})
	}
	if property == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}

	analysis, err := h.Market.AnalyzeCompetition(ctx, property)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze competition",
		})
	}
	return c.JSON(analysis)
}
