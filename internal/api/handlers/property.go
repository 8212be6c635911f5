/**
 * @description
 * Property API Handlers.
 * Exposes property search, detail, scoring and the ranked opportunities
 * listing.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/realvest-project/backend/internal/models"
	"github.com/realvest-project/backend/internal/services"
)

type PropertyHandler struct {
	Properties *services.PropertyService
	Scoring    *services.ScoringService
}

func NewPropertyHandler(properties *services.PropertyService, scoring *services.ScoringService) *PropertyHandler {
	return &PropertyHandler{Properties: properties, Scoring: scoring}
}

// SearchProperties returns listings matching the query filters
// GET /api/v1/properties
func (h *PropertyHandler) SearchProperties(c *fiber.Ctx) error {
	ctx := c.Context()

	filters := parseFilters(c)
	limit := c.QueryInt("limit", 0)

	properties, err := h.Properties.SearchProperties(ctx, filters, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search properties",
		})
	}
	return c.JSON(properties)
}

// GetProperty returns one property by id
// GET /api/v1/properties/:id
func (h *PropertyHandler) GetProperty(c *fiber.Ctx) error {
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
	return c.JSON(property)
}

// GetPropertyScore returns the five-factor score breakdown for one property
// GET /api/v1/properties/:id/score
func (h *PropertyHandler) GetPropertyScore(c *fiber.Ctx) error {
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

	return c.JSON(h.Scoring.ScoreProperty(property))
}

// GetOpportunities returns scored listings ranked for investment review.
// Listings whose fair price diverges more than 50% from the listing price are
// treated as data errors and dropped.
// GET /api/v1/opportunities
func (h *PropertyHandler) GetOpportunities(c *fiber.Ctx) error {
	ctx := c.Context()

	sortBy := c.Query("sort")
	limit := c.QueryInt("limit", 0)
	filters := parseFilters(c)

	properties, err := h.Properties.GetInvestmentOpportunities(ctx, sortBy, limit, filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch opportunities",
		})
	}

	filtered := make([]models.Property, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		if p.FairPrice != nil && p.Price > 0 {
			diff := math.Abs(*p.FairPrice-p.Price) / p.Price
			if diff > 0.5 {
				continue
			}
		}
		filtered = append(filtered, *p)
	}

	return c.JSON(h.Scoring.ScoreProperties(filtered))
}

// parseFilters reads the shared search filter set from query params.
func parseFilters(c *fiber.Ctx) *services.SearchFilters {
	filters := &services.SearchFilters{
		Location:       c.Query("location"),
		ShowMaxResults: c.QueryBool("show_max", false),
	}

	filters.PriceMin = queryFloat(c, "price_min")
	filters.PriceMax = queryFloat(c, "price_max")
	filters.SqftMin = queryFloat(c, "sqft_min")
	filters.SqftMax = queryFloat(c, "sqft_max")
	filters.MaxHOA = queryFloat(c, "max_hoa")

	if types := c.Query("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.PropertyTypes = append(filters.PropertyTypes, t)
			}
		}
	}

	return filters
}

func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
