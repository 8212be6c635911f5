/**
 * @description
 * Market analytics service.
 * Derives market trends, demographic and economic estimates from the property
 * and price-history tables, analyzes competing stock for a listing, and
 * aggregates scored properties into geohash buckets for the map layer.
 *
 * @dependencies
 * - backend/internal/models
 * - gorm.io/gorm
 * - github.com/mmcloughlin/geohash
 */

package services

import (
	"context"
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/realvest-project/backend/internal/models"
	"gorm.io/gorm"
)

// HeatmapPrecision is the geohash cell size for map aggregation (~1.2km x 0.6km).
const HeatmapPrecision = 6

// MarketTrends summarizes recent price and inventory movement.
type MarketTrends struct {
	PriceChangeYear  float64 `json:"price_change_year_pct"`
	PriceChangeMonth float64 `json:"price_change_month_pct"`
	PriceForecast    float64 `json:"price_forecast_pct"`
	InventoryCount   int64   `json:"inventory_count"`
	AvgDaysOnMarket  float64 `json:"avg_days_on_market"`
}

// Demographics are rough area-level estimates derived from listing aggregates.
type Demographics struct {
	TotalAreas      int64   `json:"total_areas"`
	MedianPrice     float64 `json:"median_price"`
	TotalProperties int64   `json:"total_properties"`
	AvgYearBuilt    float64 `json:"avg_year_built"`
}

// EconomicIndicators are growth estimates from year-over-year sales data.
type EconomicIndicators struct {
	PriceGrowth float64 `json:"price_growth_pct"`
	SalesGrowth float64 `json:"sales_growth_pct"`
}

// MarketMetrics bundles everything the market panel displays.
type MarketMetrics struct {
	Trends       MarketTrends       `json:"market_trends"`
	Demographics Demographics       `json:"demographics"`
	Economics    EconomicIndicators `json:"economics"`
}

// CompetitionAnalysis describes similar stock around one listing.
type CompetitionAnalysis struct {
	SimilarProperties int64   `json:"similar_properties"`
	AvgPrice          float64 `json:"avg_price"`
	PricePosition     string  `json:"price_position"` // "low", "competitive", "high"
}

// MarketService computes market-level analytics.
type MarketService struct {
	DB *gorm.DB
}

func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{DB: db}
}

// GetMarketMetrics returns combined metrics, optionally narrowed to a
// city/state/zip substring.
func (s *MarketService) GetMarketMetrics(ctx context.Context, location string) (*MarketMetrics, error) {
	trends, err := s.GetMarketTrends(ctx, location)
	if err != nil {
		return nil, err
	}
	demographics, err := s.GetDemographics(ctx, location)
	if err != nil {
		return nil, err
	}
	economics, err := s.GetEconomicIndicators(ctx, location)
	if err != nil {
		return nil, err
	}
	return &MarketMetrics{Trends: *trends, Demographics: *demographics, Economics: *economics}, nil
}

// GetMarketTrends derives price movement from sold events and inventory from
// active listings.
func (s *MarketService) GetMarketTrends(ctx context.Context, location string) (*MarketTrends, error) {
	locationFilter, args := locationClause(location)

	var priceRow struct {
		YearlyChange  float64
		MonthlyChange float64
	}
	priceQuery := `
		WITH price_stats AS (
			SELECT AVG(ph.price) AS avg_price, to_char(ph.date, 'YYYY-MM') AS month
			FROM price_history ph
			JOIN properties p ON ph.property_id = p.property_id
			WHERE ph.event = 'Sold'` + locationFilter + `
			GROUP BY to_char(ph.date, 'YYYY-MM')
			ORDER BY month DESC
			LIMIT 13
		)
		SELECT
			COALESCE((LAST_VALUE(avg_price) OVER w - FIRST_VALUE(avg_price) OVER w) /
				NULLIF(FIRST_VALUE(avg_price) OVER w, 0) * 100, 0) AS yearly_change,
			COALESCE((LAST_VALUE(avg_price) OVER w - NTH_VALUE(avg_price, 2) OVER w) /
				NULLIF(NTH_VALUE(avg_price, 2) OVER w, 0) * 100, 0) AS monthly_change
		FROM price_stats
		WINDOW w AS (ORDER BY month ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING)
		LIMIT 1`
	if err := s.DB.WithContext(ctx).Raw(priceQuery, args...).Scan(&priceRow).Error; err != nil {
		return nil, err
	}

	var inventoryRow struct {
		CurrentInventory int64
		AvgDays          float64
	}
	inventoryQuery := `
		SELECT COUNT(DISTINCT p.property_id) AS current_inventory,
			COALESCE(AVG(EXTRACT(DAY FROM now() - ph.date)), 0) AS avg_days
		FROM properties p
		LEFT JOIN price_history ph ON p.property_id = ph.property_id AND ph.event = 'Listed'
		WHERE p.home_status = 'FOR_SALE'` + locationFilter
	if err := s.DB.WithContext(ctx).Raw(inventoryQuery, args...).Scan(&inventoryRow).Error; err != nil {
		return nil, err
	}

	return &MarketTrends{
		PriceChangeYear:  priceRow.YearlyChange,
		PriceChangeMonth: priceRow.MonthlyChange,
		PriceForecast:    priceRow.YearlyChange * 0.8, // simple dampened forecast
		InventoryCount:   inventoryRow.CurrentInventory,
		AvgDaysOnMarket:  inventoryRow.AvgDays,
	}, nil
}

// GetDemographics aggregates listing data as a proxy for area demographics.
func (s *MarketService) GetDemographics(ctx context.Context, location string) (*Demographics, error) {
	locationFilter, args := locationClause(location)

	var row struct {
		TotalAreas      int64
		MedianPrice     float64
		TotalProperties int64
		AvgYearBuilt    float64
	}
	query := `
		SELECT COUNT(DISTINCT p.zipcode) AS total_areas,
			COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY p.price), 0) AS median_price,
			COUNT(*) AS total_properties,
			COALESCE(AVG(p.year_built), 0) AS avg_year_built
		FROM properties p
		WHERE 1=1` + locationFilter
	if err := s.DB.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}

	return &Demographics{
		TotalAreas:      row.TotalAreas,
		MedianPrice:     row.MedianPrice,
		TotalProperties: row.TotalProperties,
		AvgYearBuilt:    row.AvgYearBuilt,
	}, nil
}

// GetEconomicIndicators compares the two most recent years of sold events.
func (s *MarketService) GetEconomicIndicators(ctx context.Context, location string) (*EconomicIndicators, error) {
	locationFilter, args := locationClause(location)

	var row struct {
		SalesGrowth float64
		PriceGrowth float64
	}
	query := `
		WITH yearly_stats AS (
			SELECT to_char(ph.date, 'YYYY') AS year, COUNT(*) AS sales, AVG(ph.price) AS avg_price
			FROM price_history ph
			JOIN properties p ON ph.property_id = p.property_id
			WHERE ph.event = 'Sold'` + locationFilter + `
			GROUP BY to_char(ph.date, 'YYYY')
			ORDER BY year DESC
			LIMIT 2
		)
		SELECT
			COALESCE((LAST_VALUE(sales) OVER w - FIRST_VALUE(sales) OVER w)::float /
				NULLIF(FIRST_VALUE(sales) OVER w, 0) * 100, 0) AS sales_growth,
			COALESCE((LAST_VALUE(avg_price) OVER w - FIRST_VALUE(avg_price) OVER w) /
				NULLIF(FIRST_VALUE(avg_price) OVER w, 0) * 100, 0) AS price_growth
		FROM yearly_stats
		WINDOW w AS (ORDER BY year ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING)
		LIMIT 1`
	if err := s.DB.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}

	return &EconomicIndicators{PriceGrowth: row.PriceGrowth, SalesGrowth: row.SalesGrowth}, nil
}

// AnalyzeCompetition counts similar stock (same type and zip, ±20% size and
// price) and positions the listing against the local average.
func (s *MarketService) AnalyzeCompetition(ctx context.Context, p *models.Property) (*CompetitionAnalysis, error) {
	var row struct {
		SimilarCount int64
		AvgPrice     float64
	}
	query := `
		SELECT COUNT(*) AS similar_count, COALESCE(AVG(price), 0) AS avg_price
		FROM properties
		WHERE property_type = ?
		AND living_area BETWEEN ? * 0.8 AND ? * 1.2
		AND price BETWEEN ? * 0.8 AND ? * 1.2
		AND zipcode = ?
		AND property_id <> ?`
	err := s.DB.WithContext(ctx).Raw(query,
		p.PropertyType, p.LivingArea, p.LivingArea, p.Price, p.Price, p.Zipcode, p.PropertyID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	position := "competitive"
	if row.AvgPrice > 0 {
		if p.Price > row.AvgPrice*1.1 {
			position = "high"
		} else if p.Price < row.AvgPrice*0.9 {
			position = "low"
		}
	}

	return &CompetitionAnalysis{
		SimilarProperties: row.SimilarCount,
		AvgPrice:          row.AvgPrice,
		PricePosition:     position,
	}, nil
}

func locationClause(location string) (string, []interface{}) {
	if location == "" {
		return "", nil
	}
	pattern := "%" + location + "%"
	clause := ` AND (p.city ILIKE ? OR p.state ILIKE ? OR p.zipcode LIKE ?)`
	return clause, []interface{}{pattern, pattern, pattern}
}

// HeatmapBucket is one geohash cell of the map layer.
type HeatmapBucket struct {
	Geohash   string  `json:"geohash"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	Value     float64 `json:"value"`
}

// BuildHeatmap aggregates properties into geohash cells, averaging the chosen
// metric per cell. Metric is one of "price", "sqft", "score", "roi"; scores
// must be index-aligned with properties.
func BuildHeatmap(properties []models.Property, scores []models.InvestmentScore, metric string) []HeatmapBucket {
	type cell struct {
		sum   float64
		count int
		lat   float64
		lng   float64
	}
	cells := make(map[string]*cell)
	order := make([]string, 0)

	for i := range properties {
		p := &properties[i]
		if p.Latitude == 0 && p.Longitude == 0 {
			continue
		}

		var value float64
		switch metric {
		case "sqft":
			value = p.LivingArea
		case "score":
			if i < len(scores) {
				value = scores[i].TotalScore
			}
		case "roi":
			if i < len(scores) {
				value = scores[i].ROIScore
			}
		default: // price
			value = p.Price
		}

		hash := geohash.EncodeWithPrecision(p.Latitude, p.Longitude, HeatmapPrecision)
		c, ok := cells[hash]
		if !ok {
			c = &cell{}
			cells[hash] = c
			order = append(order, hash)
		}
		c.sum += value
		c.count++
		c.lat += p.Latitude
		c.lng += p.Longitude
	}

	buckets := make([]HeatmapBucket, 0, len(cells))
	for _, hash := range order {
		c := cells[hash]
		buckets = append(buckets, HeatmapBucket{
			Geohash:   hash,
			Latitude:  c.lat / float64(c.count),
			Longitude: c.lng / float64(c.count),
			Count:     c.count,
			Value:     round2(c.sum / float64(c.count)),
		})
	}
	return buckets
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
