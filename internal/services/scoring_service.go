/**
 * @description
 * Investment scoring service.
 * Computes the five-factor investment score (ROI, location, condition, market,
 * risk) and the weighted composite, plus the cheaper display score used for
 * quick sorting and map coloring.
 *
 * @dependencies
 * - backend/internal/models
 *
 * @notes
 * - Scoring is a pure function of the current property state. Nothing is
 *   cached; repeated calls over an unchanged batch return identical scores.
 * - Sub-scores are nominally 0-10 but condition and risk can exceed the band
 *   in edge cases, so the composite has no hard upper bound.
 */

package services

import (
	"math"
	"strings"
	"time"

	"github.com/realvest-project/backend/internal/models"
)

// Composite weights for the five sub-scores.
const (
	weightROI       = 0.35
	weightLocation  = 0.25
	weightCondition = 0.15
	weightMarket    = 0.15
	weightRisk      = 0.10
)

// Operating expenses assumed at 40% of gross rent.
const operatingExpenseRatio = 0.4

// vacancyRisk is a fixed lookup by normalized property type.
var vacancyRisk = map[string]float64{
	"SINGLE FAMILY": 8,
	"MULTI-FAMILY":  7,
	"MULTI FAMILY":  7,
	"APARTMENT":     6,
	"RETAIL":        5,
	"OFFICE":        4,
	"INDUSTRIAL":    6,
	"LAND":          3,
}

const defaultVacancyRisk = 5

// ScoringService computes investment scores for properties.
type ScoringService struct {
	// Year anchors property-age calculations. Injectable for tests; defaults
	// to the wall clock.
	Year int
}

func NewScoringService() *ScoringService {
	return &ScoringService{Year: time.Now().Year()}
}

// ROIScore scores annualized net rental yield on a 0-10 scale, capped above
// at 10. Missing rent or price scores zero.
func (s *ScoringService) ROIScore(p *models.Property) float64 {
	if p.RentEstimate == nil || *p.RentEstimate == 0 || p.Price == 0 {
		return 0
	}
	annualRent := *p.RentEstimate * 12
	netROI := annualRent * (1 - operatingExpenseRatio) / p.Price * 100
	return math.Min(10, netROI)
}

// LocationScore is a placeholder until per-property location analysis
// (schools, crime, employment, growth) lands.
func (s *ScoringService) LocationScore(p *models.Property) float64 {
	return 7.0
}

// ConditionScore scores property condition from age, adjusted by the
// zestimate-to-price ratio when both are known.
func (s *ScoringService) ConditionScore(p *models.Property) float64 {
	if p.YearBuilt == nil {
		return 5.0
	}

	age := float64(s.Year - *p.YearBuilt)
	ageScore := math.Max(0, 10-age/10)

	if p.Zestimate != nil && p.Price != 0 {
		conditionFactor := *p.Zestimate / p.Price
		conditionFactor = math.Min(1.2, math.Max(0.8, conditionFactor))
		return (ageScore + conditionFactor*10) / 2
	}
	return ageScore
}

// MarketScore is a placeholder until market trend analysis (price history,
// days on market, comparable sales) lands.
func (s *ScoringService) MarketScore(p *models.Property) float64 {
	return 6.0
}

// RiskScore averages up to three risk factors: price volatility (when a
// zestimate exists), vacancy risk by property type, and a constant market
// risk.
func (s *ScoringService) RiskScore(p *models.Property) float64 {
	var factors []float64

	if p.Zestimate != nil && p.Price != 0 {
		priceDiff := math.Abs(*p.Zestimate-p.Price) / p.Price
		factors = append(factors, 10-priceDiff*100)
	}

	vacancy, ok := vacancyRisk[strings.ToUpper(strings.TrimSpace(p.PropertyType))]
	if !ok {
		vacancy = defaultVacancyRisk
	}
	factors = append(factors, vacancy)

	// Market risk placeholder.
	factors = append(factors, 6)

	return mean(factors)
}

// ScoreProperty computes the full five-factor breakdown and weighted
// composite for one property.
func (s *ScoringService) ScoreProperty(p *models.Property) models.InvestmentScore {
	roi := s.ROIScore(p)
	location := s.LocationScore(p)
	condition := s.ConditionScore(p)
	market := s.MarketScore(p)
	risk := s.RiskScore(p)

	total := (roi*weightROI +
		location*weightLocation +
		condition*weightCondition +
		market*weightMarket +
		risk*weightRisk) * 10 // scale to 0-100

	return models.InvestmentScore{
		Property:       p,
		PropertyID:     p.PropertyID,
		Address:        p.Address,
		Price:          p.Price,
		TotalScore:     total,
		ROIScore:       roi,
		LocationScore:  location,
		ConditionScore: condition,
		MarketScore:    market,
		RiskScore:      risk,
	}
}

// ScoreProperties scores each property independently, preserving order.
func (s *ScoringService) ScoreProperties(properties []models.Property) []models.InvestmentScore {
	scores := make([]models.InvestmentScore, len(properties))
	for i := range properties {
		scores[i] = s.ScoreProperty(&properties[i])
	}
	return scores
}

// DisplayScore is the quick 0-10 heuristic used for table coloring and map
// markers. It is intentionally separate from the five-factor model: cap rate
// (0-4 pts), appreciation potential (0-3 pts), property age (0-2 pts), and
// HOA absence or low value (0-1 pt).
func (s *ScoringService) DisplayScore(p *models.Property) float64 {
	score := 0.0

	if p.Price > 0 && p.RentEstimate != nil {
		capRate := *p.RentEstimate * 12 / p.Price
		score += math.Min(capRate*40, 4)
	}

	if p.Price > 0 && p.Zestimate != nil {
		appreciation := (*p.Zestimate - p.Price) / p.Price
		score += math.Min(appreciation*10, 3)
	}

	if p.YearBuilt != nil {
		ageScore := math.Min(float64(s.Year-*p.YearBuilt)/100, 1)
		score += 2 * (1 - ageScore)
	}

	if p.MonthlyHOA == nil || *p.MonthlyHOA < 200 {
		score++
	}

	return score
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 5.0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
