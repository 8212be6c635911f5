/**
 * @description
 * Fair price prediction service.
 * Runs the feature pipeline (vectorize -> preprocess -> PCA -> regression),
 * post-processes predictions, and degrades gracefully when the model or any
 * pipeline stage is unavailable.
 *
 * @dependencies
 * - backend/internal/analysis
 * - backend/internal/models
 *
 * @notes
 * - PredictFairPrices never returns an error: on failure every fair price
 *   falls back to the listing price and the outcome is flagged as a fallback.
 * - Predictions are jittered by N(1, 0.05) on purpose, so near-identical
 *   feature vectors don't produce identical fair prices. Tests tolerate the
 *   ±5% band instead of asserting exact values.
 */

package services

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/realvest-project/backend/internal/analysis"
	"github.com/realvest-project/backend/internal/logger"
	"github.com/realvest-project/backend/internal/models"
)

// PredictionStatus distinguishes a real prediction from the identity fallback.
type PredictionStatus int

const (
	StatusPredicted PredictionStatus = iota
	StatusFallback
)

func (s PredictionStatus) String() string {
	if s == StatusFallback {
		return "fallback"
	}
	return "predicted"
}

// jitterStdDev is the standard deviation of the multiplicative noise applied
// to raw predictions.
const jitterStdDev = 0.05

// PredictionService estimates a fair market price per property.
type PredictionService struct {
	Model *analysis.PriceModel

	mu  sync.Mutex
	rng *rand.Rand

	logModelMissing sync.Once
}

// NewPredictionService loads the persisted model artifact. A missing or
// corrupt artifact is not fatal: the service starts in degraded mode and
// echoes listing prices.
func NewPredictionService(modelPath string) *PredictionService {
	model, err := analysis.LoadPriceModel(modelPath)
	if err != nil {
		logger.Error("Failed to load price model from %s: %v — fair prices will fall back to listing prices", modelPath, err)
		model = nil
	}
	return &PredictionService{
		Model: model,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PredictFairPrices returns one fair price per property, same order and length
// as the input. On any failure it returns the listing prices unchanged with
// StatusFallback.
func (s *PredictionService) PredictFairPrices(properties []models.Property) ([]float64, PredictionStatus) {
	listed := make([]float64, len(properties))
	for i := range properties {
		listed[i] = properties[i].Price
	}
	if len(properties) == 0 {
		return listed, StatusPredicted
	}

	if s.Model == nil {
		s.logModelMissing.Do(func() {
			logger.Warn("Price model unavailable, using listing prices as fair prices")
		})
		return listed, StatusFallback
	}

	schema := s.Model.FeatureSchema()
	frame := vectorizeProperties(properties, schema)

	x, _, err := analysis.Preprocess(frame, schema)
	if err != nil {
		logger.Error("Fair price preprocessing failed: %v", err)
		return listed, StatusFallback
	}

	reduced, err := analysis.ReduceTo(x, s.Model.Components)
	if err != nil {
		logger.Error("Fair price projection failed: %v", err)
		return listed, StatusFallback
	}

	raw, err := s.Model.Predict(reduced)
	if err != nil {
		logger.Error("Fair price regression failed: %v", err)
		return listed, StatusFallback
	}

	out := make([]float64, len(properties))
	for i, prediction := range raw {
		// No negative prices.
		prediction = math.Max(prediction, 0)

		// Multiplicative jitter so near-identical feature vectors don't
		// collapse onto one value.
		prediction *= 1 + s.normFloat()*jitterStdDev

		// The listing-price band is authoritative and applied last.
		lower, upper := listed[i]*0.5, listed[i]*1.5
		out[i] = math.Min(math.Max(prediction, lower), upper)
	}
	return out, StatusPredicted
}

func (s *PredictionService) normFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.NormFloat64()
}

// Attributes that never enter the feature space, regardless of schema.
var excludedFeatures = map[string]bool{
	"price":       true,
	"fair_price":  true,
	"property_id": true,
	"id":          true,
}

func featureExcluded(name string) bool {
	// schools/-prefixed attributes are third-party noise columns.
	return excludedFeatures[name] || strings.HasPrefix(name, "schools/")
}

// vectorizeProperties builds the raw feature frame the schema asks for.
// Unknown attribute names are dropped from the schema rather than zero-filled.
func vectorizeProperties(properties []models.Property, schema *analysis.FeatureSchema) *analysis.Frame {
	frame := analysis.NewFrame(len(properties))

	numeric := schema.Numeric[:0:0]
	for _, name := range schema.Numeric {
		if featureExcluded(name) {
			continue
		}
		col := make([]float64, len(properties))
		known := false
		for i := range properties {
			v, ok := numericFeature(&properties[i], name)
			if ok {
				known = true
			}
			col[i] = v
		}
		if !known {
			continue
		}
		frame.Numeric[name] = col
		numeric = append(numeric, name)
	}
	schema.Numeric = numeric

	categorical := schema.Categorical[:0:0]
	for _, name := range schema.Categorical {
		if featureExcluded(name) {
			continue
		}
		col := make([]string, len(properties))
		known := false
		for i := range properties {
			v, ok := categoricalFeature(&properties[i], name)
			if ok {
				known = true
			}
			col[i] = v
		}
		if !known {
			continue
		}
		frame.Categorical[name] = col
		categorical = append(categorical, name)
	}
	schema.Categorical = categorical

	return frame
}

// numericFeature resolves a numeric attribute by its schema name. Missing
// values are NaN; the second return reports whether the name is known at all.
func numericFeature(p *models.Property, name string) (float64, bool) {
	switch name {
	case "living_area":
		return p.LivingArea, true
	case "bedrooms":
		return optionalInt(p.Bedrooms), true
	case "bathrooms":
		return optionalFloat(p.Bathrooms), true
	case "year_built":
		return optionalInt(p.YearBuilt), true
	case "lot_size":
		return optionalFloat(p.LotSize), true
	case "latitude":
		return p.Latitude, true
	case "longitude":
		return p.Longitude, true
	case "zestimate":
		return optionalFloat(p.Zestimate), true
	case "rent_estimate":
		return optionalFloat(p.RentEstimate), true
	case "tax_assessed_value":
		return optionalFloat(p.TaxAssessedValue), true
	case "tax_rate":
		return optionalFloat(p.TaxRate), true
	case "monthly_hoa":
		return optionalFloat(p.MonthlyHOA), true
	}
	return math.NaN(), false
}

// categoricalFeature resolves a categorical attribute by its schema name.
// Values are coerced to strings; missing values are "".
func categoricalFeature(p *models.Property, name string) (string, bool) {
	switch name {
	case "property_type":
		return p.PropertyType, true
	case "city":
		return p.City, true
	case "state":
		return p.State, true
	case "zipcode":
		return p.Zipcode, true
	case "county":
		return p.County, true
	case "home_status":
		return p.HomeStatus, true
	}
	return "", false
}

func optionalFloat(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func optionalInt(v *int) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}
