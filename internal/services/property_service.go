/**
 * @description
 * Service layer for property records.
 * Orchestrates filtered listing queries against Postgres and caches the
 * default opportunity listing in Redis.
 *
 * @dependencies
 * - backend/internal/models
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 */

package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/realvest-project/backend/internal/logger"
	"github.com/realvest-project/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	CacheKeyOpportunities = "properties:opportunities"
	CacheTTL              = 5 * time.Minute

	DefaultLimit = 50
	MaxLimit     = 2000
)

// scoreOrderSQL mirrors the display-layer ranking heuristic: rental yield
// weighted 0.4 plus appreciation potential weighted 0.3.
const scoreOrderSQL = `(CASE WHEN price > 0 THEN ` +
	`COALESCE(rent_estimate * 12.0 / NULLIF(price, 0), 0) * 0.4 + ` +
	`COALESCE((zestimate - price) / NULLIF(price, 0), 0) * 0.3 END) DESC NULLS LAST`

// Property types eligible for the opportunities listing.
var opportunityTypes = []string{models.TypeSingleFamily, models.TypeCondo, models.TypeTownhouse}

// SearchFilters narrows property queries. Nil bounds are open.
type SearchFilters struct {
	PriceMin       *float64
	PriceMax       *float64
	SqftMin        *float64
	SqftMax        *float64
	PropertyTypes  []string
	Location       string
	MaxHOA         *float64
	ShowMaxResults bool
}

func (f *SearchFilters) empty() bool {
	return f == nil || (f.PriceMin == nil && f.PriceMax == nil &&
		f.SqftMin == nil && f.SqftMax == nil &&
		len(f.PropertyTypes) == 0 && f.Location == "" && f.MaxHOA == nil &&
		!f.ShowMaxResults)
}

// PropertyService reads property records for the analysis and display layers.
type PropertyService struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewPropertyService(db *gorm.DB, rdb *redis.Client) *PropertyService {
	return &PropertyService{DB: db, Redis: rdb}
}

// SearchProperties returns listings matching the filters, capped at limit.
func (s *PropertyService) SearchProperties(ctx context.Context, filters *SearchFilters, limit int) ([]models.Property, error) {
	query := s.DB.WithContext(ctx).Model(&models.Property{})
	query = applyFilters(query, filters, false)

	var properties []models.Property
	if err := query.Limit(clampLimit(limit, filters)).Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetPropertyByID returns one property, or nil when it doesn't exist.
func (s *PropertyService) GetPropertyByID(ctx context.Context, id uint64) (*models.Property, error) {
	var property models.Property
	err := s.DB.WithContext(ctx).First(&property, "property_id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetInvestmentOpportunities returns listings ranked for investment review.
// The default listing (score sort, no filters, default limit) is served from
// cache when possible; scores themselves are never cached.
func (s *PropertyService) GetInvestmentOpportunities(ctx context.Context, sortBy string, limit int, filters *SearchFilters) ([]models.Property, error) {
	useCache := (sortBy == "" || sortBy == "score") && filters.empty() && (limit <= 0 || limit == DefaultLimit)

	if useCache && s.Redis != nil {
		val, err := s.Redis.Get(ctx, CacheKeyOpportunities).Result()
		if err == nil {
			var properties []models.Property
			if err := json.Unmarshal([]byte(val), &properties); err == nil {
				return properties, nil
			}
			// If unmarshal fails, fall through to DB
		}
	}

	query := s.DB.WithContext(ctx).Model(&models.Property{})
	query = applyFilters(query, filters, true)
	query = applySorting(query, sortBy)

	var properties []models.Property
	if err := query.Limit(clampLimit(limit, filters)).Find(&properties).Error; err != nil {
		return nil, err
	}

	if useCache && s.Redis != nil {
		data, err := json.Marshal(properties)
		if err != nil {
			logger.Error("Failed to marshal opportunities for cache: %v", err)
		} else if err := s.Redis.Set(ctx, CacheKeyOpportunities, data, CacheTTL).Err(); err != nil {
			logger.Error("Failed to set opportunities cache: %v", err)
		}
	}

	return properties, nil
}

// UpdateFairPrice persists a computed fair price for one property.
func (s *PropertyService) UpdateFairPrice(ctx context.Context, id uint64, fairPrice float64) error {
	return s.DB.WithContext(ctx).Model(&models.Property{}).
		Where("property_id = ?", id).
		Update("fair_price", fairPrice).Error
}

func applyFilters(query *gorm.DB, filters *SearchFilters, strictTypes bool) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.PriceMin != nil && filters.PriceMax != nil {
		query = query.Where("price BETWEEN ? AND ?", *filters.PriceMin, *filters.PriceMax)
	}
	if filters.SqftMin != nil && filters.SqftMax != nil {
		query = query.Where("living_area BETWEEN ? AND ?", *filters.SqftMin, *filters.SqftMax)
	}

	if len(filters.PropertyTypes) > 0 {
		types := normalizeTypes(filters.PropertyTypes, strictTypes)
		if len(types) > 0 {
			query = query.Where("property_type IN ?", types)
		}
	}

	if filters.Location != "" {
		pattern := "%" + strings.TrimSpace(filters.Location) + "%"
		query = query.Where(
			"(LOWER(city) LIKE LOWER(?) OR zipcode LIKE ? OR LOWER(state) LIKE LOWER(?))",
			pattern, pattern, pattern,
		)
	}

	if filters.MaxHOA != nil {
		query = query.Where("(monthly_hoa <= ? OR monthly_hoa IS NULL)", *filters.MaxHOA)
	}

	return query
}

// normalizeTypes maps requested property types to the closed set. When strict,
// only the opportunity whitelist survives.
func normalizeTypes(requested []string, strict bool) []string {
	var out []string
	for _, raw := range requested {
		normalized := models.NormalizePropertyType(raw)
		if normalized == models.TypeUnknown {
			continue
		}
		if strict && !containsType(opportunityTypes, normalized) {
			continue
		}
		if !containsType(out, normalized) {
			out = append(out, normalized)
		}
	}
	return out
}

func containsType(types []string, t string) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func applySorting(query *gorm.DB, sortBy string) *gorm.DB {
	switch sortBy {
	case "", "score":
		return query.Order(scoreOrderSQL)
	case "roi_potential":
		return query.Order("COALESCE((zestimate - price) / NULLIF(price, 0), 0) DESC")
	case "cap_rate":
		return query.Order("COALESCE(rent_estimate * 12.0 / NULLIF(price, 0), 0) DESC")
	case "price_asc":
		return query.Order("price ASC")
	case "price_desc":
		return query.Order("price DESC")
	default:
		return query.Order("price DESC")
	}
}

func clampLimit(limit int, filters *SearchFilters) int {
	if filters != nil && filters.ShowMaxResults {
		return MaxLimit
	}
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
