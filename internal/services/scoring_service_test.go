package services

import (
	"math"
	"testing"

	"github.com/realvest-project/backend/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newTestScoringService() *ScoringService {
	// Fixed year so age-derived scores don't drift with the wall clock.
	return &ScoringService{Year: 2024}
}

func TestScorePropertyEndToEnd(t *testing.T) {
	s := newTestScoringService()
	p := &models.Property{
		Price:        500000,
		Zestimate:    floatPtr(520000),
		RentEstimate: floatPtr(2500),
		YearBuilt:    intPtr(2000),
		PropertyType: "SINGLE FAMILY",
	}

	score := s.ScoreProperty(p)

	if math.Abs(score.ROIScore-3.6) > 1e-9 {
		t.Errorf("roi = %v, want 3.6", score.ROIScore)
	}
	// mean(7.6 age score, 10.4 condition factor)
	if math.Abs(score.ConditionScore-9.0) > 1e-9 {
		t.Errorf("condition = %v, want 9.0", score.ConditionScore)
	}
	// mean(6.0 volatility, 8 vacancy, 6 market)
	if math.Abs(score.RiskScore-20.0/3.0) > 1e-9 {
		t.Errorf("risk = %v, want 6.67", score.RiskScore)
	}
	if score.LocationScore != 7.0 || score.MarketScore != 6.0 {
		t.Errorf("location/market = %v/%v, want 7.0/6.0", score.LocationScore, score.MarketScore)
	}

	wantTotal := (3.6*weightROI + 7.0*weightLocation + 9.0*weightCondition +
		6.0*weightMarket + (20.0/3.0)*weightRisk) * 10
	if math.Abs(score.TotalScore-wantTotal) > 1e-9 {
		t.Errorf("total = %v, want %v", score.TotalScore, wantTotal)
	}
}

func TestRiskScoreLandWithoutZestimate(t *testing.T) {
	s := newTestScoringService()
	p := &models.Property{Price: 100000, PropertyType: "Land"}

	// Only vacancy (3) and constant market risk (6) contribute.
	if got := s.RiskScore(p); math.Abs(got-4.5) > 1e-9 {
		t.Errorf("land risk = %v, want 4.5", got)
	}
}

func TestRiskScoreUnknownTypeUsesDefault(t *testing.T) {
	s := newTestScoringService()
	p := &models.Property{Price: 100000, PropertyType: "HOUSEBOAT"}

	// mean(default vacancy 5, constant 6)
	if got := s.RiskScore(p); math.Abs(got-5.5) > 1e-9 {
		t.Errorf("unknown-type risk = %v, want 5.5", got)
	}
}

func TestMissingDataDefaults(t *testing.T) {
	s := newTestScoringService()

	if got := s.ConditionScore(&models.Property{Price: 100000}); got != 5.0 {
		t.Errorf("condition without year_built = %v, want 5.0", got)
	}
	if got := s.ROIScore(&models.Property{Price: 100000}); got != 0.0 {
		t.Errorf("roi without rent = %v, want 0.0", got)
	}
	if got := s.ROIScore(&models.Property{RentEstimate: floatPtr(2000)}); got != 0.0 {
		t.Errorf("roi without price = %v, want 0.0", got)
	}
}

func TestROIScoreMonotonicInRent(t *testing.T) {
	s := newTestScoringService()

	prev := -1.0
	for rent := 500.0; rent <= 20000; rent += 500 {
		p := &models.Property{Price: 500000, RentEstimate: floatPtr(rent)}
		got := s.ROIScore(p)
		if got < prev {
			t.Fatalf("roi decreased from %v to %v at rent %v", prev, got, rent)
		}
		if got > 10 {
			t.Fatalf("roi %v exceeds cap at rent %v", got, rent)
		}
		prev = got
	}
	if prev != 10 {
		t.Errorf("roi at max rent = %v, want capped at 10", prev)
	}
}

func TestConditionScoreVeryOldProperty(t *testing.T) {
	s := newTestScoringService()
	p := &models.Property{Price: 100000, YearBuilt: intPtr(1850)}

	// Age score floors at zero, it never goes negative.
	if got := s.ConditionScore(p); got != 0 {
		t.Errorf("condition for 174-year-old property = %v, want 0", got)
	}
}

func TestScorePropertiesIdempotent(t *testing.T) {
	s := newTestScoringService()
	properties := []models.Property{
		{PropertyID: 1, Price: 500000, Zestimate: floatPtr(520000), RentEstimate: floatPtr(2500), YearBuilt: intPtr(2000), PropertyType: "SINGLE FAMILY"},
		{PropertyID: 2, Price: 250000, PropertyType: "CONDO"},
		{PropertyID: 3, Price: 90000, PropertyType: "Land"},
	}

	first := s.ScoreProperties(properties)
	second := s.ScoreProperties(properties)

	if len(first) != len(properties) {
		t.Fatalf("scored %d properties, want %d", len(first), len(properties))
	}
	for i := range first {
		if first[i].PropertyID != properties[i].PropertyID {
			t.Errorf("score %d out of order: got property %d", i, first[i].PropertyID)
		}
		if first[i] != second[i] {
			t.Errorf("scores for property %d differ between calls: %+v vs %+v",
				first[i].PropertyID, first[i], second[i])
		}
	}
}

func TestDisplayScore(t *testing.T) {
	s := newTestScoringService()

	// New-ish property, good cap rate, appreciation, no HOA.
	p := &models.Property{
		Price:        300000,
		RentEstimate: floatPtr(2500),
		Zestimate:    floatPtr(330000),
		YearBuilt:    intPtr(2014),
	}
	got := s.DisplayScore(p)

	// cap rate 0.1 -> capped 4; appreciation 0.1 -> 1; age 10 -> 1.8; HOA -> 1
	want := 4.0 + 1.0 + 1.8 + 1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("display score = %v, want %v", got, want)
	}

	// Bare record still earns the no-HOA point.
	if got := s.DisplayScore(&models.Property{}); got != 1.0 {
		t.Errorf("bare display score = %v, want 1.0", got)
	}
}
