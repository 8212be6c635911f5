/**
 * @description
 * Property listing database model and derived investment score types.
 * Maps to the 'properties' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"strings"
	"time"
)

// Sentinel defaults for address fields. Address components are never NULL in the
// properties table; absent values carry these placeholders instead.
const (
	AddressNotAvailable = "Address Not Available"
	CityNotAvailable    = "City Not Available"
	StateNotAvailable   = "NA"
	ZipcodeNotAvailable = "00000"
)

// Normalized property types (closed set). NormalizePropertyType maps raw
// listing strings onto these.
const (
	TypeSingleFamily = "SINGLE FAMILY"
	TypeCondo        = "CONDO"
	TypeTownhouse    = "TOWNHOUSE"
	TypeMultiFamily  = "MULTI-FAMILY"
	TypeLand         = "LAND"
	TypeUnknown      = "UNKNOWN"
)

// Property represents one real-estate listing
// Maps to the 'properties' table
type Property struct {
	PropertyID uint64  `gorm:"primaryKey;column:property_id" json:"property_id"`
	Price      float64 `gorm:"column:price" json:"price"`
	// FairPrice is derived by the prediction pipeline; NULL until computed
	FairPrice *float64 `gorm:"column:fair_price" json:"fair_price"`

	PropertyType string   `gorm:"column:property_type;index" json:"property_type"`
	LivingArea   float64  `gorm:"column:living_area" json:"living_area"`
	Bedrooms     *int     `gorm:"column:bedrooms" json:"bedrooms"`
	Bathrooms    *float64 `gorm:"column:bathrooms" json:"bathrooms"`
	YearBuilt    *int     `gorm:"column:year_built" json:"year_built"`
	LotSize      *float64 `gorm:"column:lot_size" json:"lot_size"`

	Latitude  float64 `gorm:"column:latitude" json:"latitude"`
	Longitude float64 `gorm:"column:longitude" json:"longitude"`

	Zestimate        *float64 `gorm:"column:zestimate" json:"zestimate"`
	RentEstimate     *float64 `gorm:"column:rent_estimate" json:"rent_estimate"`
	TaxAssessedValue *float64 `gorm:"column:tax_assessed_value" json:"tax_assessed_value"`
	TaxRate          *float64 `gorm:"column:tax_rate" json:"tax_rate"`
	MonthlyHOA       *float64 `gorm:"column:monthly_hoa" json:"monthly_hoa"`

	Address string `gorm:"column:address" json:"address"`
	City    string `gorm:"column:city;index" json:"city"`
	State   string `gorm:"column:state" json:"state"`
	Zipcode string `gorm:"column:zipcode;index" json:"zipcode"`
	County  string `gorm:"column:county" json:"county"`

	HomeStatus string `gorm:"column:home_status" json:"home_status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides the table name used by Property to `properties`
func (Property) TableName() string {
	return "properties"
}

// CapRate returns the annualized net rental yield as a percentage of price,
// or nil when rent or price is unknown.
func (p *Property) CapRate() *float64 {
	if p.RentEstimate == nil || *p.RentEstimate == 0 || p.Price == 0 {
		return nil
	}
	annualRent := *p.RentEstimate * 12
	rate := (annualRent - annualRent*0.1) / p.Price * 100
	return &rate
}

// PricePerSqft returns price divided by living area, or nil when either is unknown.
func (p *Property) PricePerSqft() *float64 {
	if p.LivingArea == 0 || p.Price == 0 {
		return nil
	}
	v := p.Price / p.LivingArea
	return &v
}

// ApplyAddressDefaults replaces empty address components with their sentinels.
func (p *Property) ApplyAddressDefaults() {
	if strings.TrimSpace(p.Address) == "" {
		p.Address = AddressNotAvailable
	}
	if strings.TrimSpace(p.City) == "" {
		p.City = CityNotAvailable
	}
	if strings.TrimSpace(p.State) == "" {
		p.State = StateNotAvailable
	}
	if strings.TrimSpace(p.Zipcode) == "" {
		p.Zipcode = ZipcodeNotAvailable
	}
}

// propertyTypeAliases maps listing-source spellings onto the normalized set.
var propertyTypeAliases = map[string]string{
	"SINGLE FAMILY": TypeSingleFamily,
	"SINGLE-FAMILY": TypeSingleFamily,
	"SINGLEFAMILY":  TypeSingleFamily,
	"SINGLE_FAMILY": TypeSingleFamily,
	"CONDO":         TypeCondo,
	"CONDOMINIUM":   TypeCondo,
	"TOWNHOUSE":     TypeTownhouse,
	"TOWN_HOUSE":    TypeTownhouse,
	"TOWNHOME":      TypeTownhouse,
	"MULTI-FAMILY":  TypeMultiFamily,
	"MULTI FAMILY":  TypeMultiFamily,
	"MULTIFAMILY":   TypeMultiFamily,
	"MULTI_FAMILY":  TypeMultiFamily,
	"LAND":          TypeLand,
	"LOT":           TypeLand,
	"VACANT LAND":   TypeLand,
}

// NormalizePropertyType maps a raw property type string onto the closed set,
// returning TypeUnknown for anything unrecognized.
func NormalizePropertyType(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return TypeUnknown
	}
	if normalized, ok := propertyTypeAliases[key]; ok {
		return normalized
	}
	return TypeUnknown
}

// InvestmentScore is the five-factor score breakdown for one property.
// Computed fresh on every request, never persisted or cached.
type InvestmentScore struct {
	Property *Property `json:"-"`

	PropertyID uint64  `json:"property_id"`
	Address    string  `json:"address"`
	Price      float64 `json:"price"`

	TotalScore     float64 `json:"total_score"`
	ROIScore       float64 `json:"roi_score"`
	LocationScore  float64 `json:"location_score"`
	ConditionScore float64 `json:"condition_score"`
	MarketScore    float64 `json:"market_score"`
	RiskScore      float64 `json:"risk_score"`
}
