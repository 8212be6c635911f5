package services

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/realvest-project/backend/internal/analysis"
	"github.com/realvest-project/backend/internal/models"
)

const testModelArtifact = `{
	"version": 1,
	"components": 2,
	"intercept": 250000,
	"coefficients": [15000, -4000],
	"schema": {
		"numeric": ["living_area", "bedrooms", "year_built"],
		"categorical": {"property_type": ["CONDO", "SINGLE FAMILY", "TOWNHOUSE"]}
	}
}`

func newTestPredictionService(t *testing.T) *PredictionService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "price_model.json")
	if err := os.WriteFile(path, []byte(testModelArtifact), 0o644); err != nil {
		t.Fatalf("failed to write model artifact: %v", err)
	}
	model, err := analysis.LoadPriceModel(path)
	if err != nil {
		t.Fatalf("failed to load model artifact: %v", err)
	}
	return &PredictionService{Model: model, rng: rand.New(rand.NewSource(1))}
}

func testBatch() []models.Property {
	return []models.Property{
		{PropertyID: 1, Price: 450000, LivingArea: 1800, Bedrooms: intPtr(3), YearBuilt: intPtr(1995), PropertyType: "SINGLE FAMILY"},
		{PropertyID: 2, Price: 320000, LivingArea: 1100, Bedrooms: intPtr(2), YearBuilt: intPtr(2005), PropertyType: "CONDO"},
		{PropertyID: 3, Price: 510000, LivingArea: 2100, Bedrooms: intPtr(4), YearBuilt: intPtr(1988), PropertyType: "TOWNHOUSE"},
		{PropertyID: 4, Price: 275000, LivingArea: 950, PropertyType: "CONDO"},
		{PropertyID: 5, Price: 610000, LivingArea: 2600, Bedrooms: intPtr(4), YearBuilt: intPtr(2015), PropertyType: "SINGLE FAMILY"},
	}
}

func TestPredictFairPricesMissingModel(t *testing.T) {
	s := NewPredictionService(filepath.Join(t.TempDir(), "absent.json"))
	if s.Model != nil {
		t.Fatal("expected nil model for missing artifact")
	}

	batch := testBatch()
	fairPrices, status := s.PredictFairPrices(batch)

	if status != StatusFallback {
		t.Fatalf("status = %v, want fallback", status)
	}
	if len(fairPrices) != len(batch) {
		t.Fatalf("got %d fair prices for %d properties", len(fairPrices), len(batch))
	}
	for i := range batch {
		if fairPrices[i] != batch[i].Price {
			t.Errorf("fallback fair price[%d] = %v, want listing price %v", i, fairPrices[i], batch[i].Price)
		}
	}
}

func TestPredictFairPricesEmptyBatch(t *testing.T) {
	s := newTestPredictionService(t)
	fairPrices, status := s.PredictFairPrices(nil)
	if status != StatusPredicted {
		t.Errorf("status = %v, want predicted", status)
	}
	if len(fairPrices) != 0 {
		t.Errorf("got %d fair prices for empty batch", len(fairPrices))
	}
}

func TestPredictFairPricesWithinBounds(t *testing.T) {
	s := newTestPredictionService(t)
	batch := testBatch()

	fairPrices, status := s.PredictFairPrices(batch)
	if status != StatusPredicted {
		t.Fatalf("status = %v, want predicted", status)
	}
	if len(fairPrices) != len(batch) {
		t.Fatalf("got %d fair prices for %d properties", len(fairPrices), len(batch))
	}

	// Predictions are jittered, so only the clamp band is asserted.
	for i := range batch {
		lower, upper := batch[i].Price*0.5, batch[i].Price*1.5
		if fairPrices[i] < lower || fairPrices[i] > upper {
			t.Errorf("fair price[%d] = %v outside [%v, %v]", i, fairPrices[i], lower, upper)
		}
		if fairPrices[i] < 0 {
			t.Errorf("fair price[%d] is negative", i)
		}
	}
}

func TestPredictFairPricesSmallBatchFallsBack(t *testing.T) {
	s := newTestPredictionService(t)

	// One row cannot support a two-component projection.
	batch := testBatch()[:1]
	fairPrices, status := s.PredictFairPrices(batch)

	if status != StatusFallback {
		t.Fatalf("status = %v, want fallback for undersized batch", status)
	}
	if fairPrices[0] != batch[0].Price {
		t.Errorf("fallback fair price = %v, want %v", fairPrices[0], batch[0].Price)
	}
}

func TestPredictionStatusString(t *testing.T) {
	if StatusPredicted.String() != "predicted" || StatusFallback.String() != "fallback" {
		t.Error("unexpected status labels")
	}
}

func TestVectorizePropertiesDropsUnknownNames(t *testing.T) {
	schema := &analysis.FeatureSchema{
		Numeric:     []string{"living_area", "not_a_real_column"},
		Categorical: []string{"property_type", "also_not_real"},
	}
	batch := testBatch()

	frame := vectorizeProperties(batch, schema)

	if len(schema.Numeric) != 1 || schema.Numeric[0] != "living_area" {
		t.Errorf("numeric schema after pruning = %v", schema.Numeric)
	}
	if len(schema.Categorical) != 1 || schema.Categorical[0] != "property_type" {
		t.Errorf("categorical schema after pruning = %v", schema.Categorical)
	}
	if frame.N != len(batch) {
		t.Errorf("frame has %d records, want %d", frame.N, len(batch))
	}
}

func TestVectorizePropertiesExcludesTargets(t *testing.T) {
	schema := &analysis.FeatureSchema{
		Numeric: []string{"price", "fair_price", "living_area", "schools/rating"},
	}
	frame := vectorizeProperties(testBatch(), schema)

	if len(schema.Numeric) != 1 || schema.Numeric[0] != "living_area" {
		t.Errorf("numeric schema after exclusion = %v", schema.Numeric)
	}
	if _, ok := frame.Numeric["price"]; ok {
		t.Error("price leaked into the feature frame")
	}
}
