/**
 * @description
 * Analysis API Handlers.
 * Exposes chart-oriented aggregations: ROI scatter points and the geohash
 * heatmap layer.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/realvest-project/backend/internal/services"
)

type AnalysisHandler struct {
	Properties *services.PropertyService
	Scoring    *services.ScoringService
}

func NewAnalysisHandler(properties *services.PropertyService, scoring *services.ScoringService) *AnalysisHandler {
	return &AnalysisHandler{Properties: properties, Scoring: scoring}
}

// ROIPoint is one scatter point of the price vs ROI chart.
type ROIPoint struct {
	PropertyID uint64  `json:"property_id"`
	Address    string  `json:"address"`
	Price      float64 `json:"price"`
	ROIScore   float64 `json:"roi_score"`
}

// GetROIAnalysis returns price vs ROI points for the current filter set
// GET /api/v1/analysis/roi
func (h *AnalysisHandler) GetROIAnalysis(c *fiber.Ctx) error {
	ctx := c.Context()

	filters := parseFilters(c)
	limit := c.QueryInt("limit", 0)

	properties, err := h.Properties.SearchProperties(ctx, filters, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch properties for analysis",
		})
	}

	points := make([]ROIPoint, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		points = append(points, ROIPoint{
			PropertyID: p.PropertyID,
			Address:    p.Address,
			Price:      p.Price,
			ROIScore:   h.Scoring.ROIScore(p),
		})
	}
	return c.JSON(points)
}

// GetHeatmap returns geohash buckets averaging the chosen metric
// GET /api/v1/analysis/heatmap?metric=price|sqft|score|roi
func (h *AnalysisHandler) GetHeatmap(c *fiber.Ctx) error {
	ctx := c.Context()

	metric := c.Query("metric", "price")
	filters := parseFilters(c)

	properties, err := h.Properties.SearchProperties(ctx, filters, services.MaxLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch properties for heatmap",
		})
	}

	scores := h.Scoring.ScoreProperties(properties)
	return c.JSON(services.BuildHeatmap(properties, scores, metric))
}
