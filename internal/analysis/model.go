/**
 * @description
 * Persisted regression model artifact for fair-price prediction.
 * The artifact carries its own feature schema (numeric names plus categorical
 * vocabularies) so the live encoding width always matches training time.
 *
 * @dependencies
 * - gonum.org/v1/gonum/mat
 */

package analysis

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ModelSchema is the feature layout the model was trained on.
type ModelSchema struct {
	Numeric     []string            `json:"numeric"`
	Categorical map[string][]string `json:"categorical"`
}

// PriceModel is a trained linear regression over the projected feature space.
type PriceModel struct {
	Version      int         `json:"version"`
	Components   int         `json:"components"`
	Intercept    float64     `json:"intercept"`
	Coefficients []float64   `json:"coefficients"`
	Schema       ModelSchema `json:"schema"`
}

// LoadPriceModel reads and validates a model artifact from disk.
func LoadPriceModel(path string) (*PriceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m PriceModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks internal consistency of the artifact.
func (m *PriceModel) Validate() error {
	if m.Components <= 0 {
		return fmt.Errorf("model artifact: invalid component count %d", m.Components)
	}
	if len(m.Coefficients) != m.Components {
		return fmt.Errorf("model artifact: %d coefficients for %d components", len(m.Coefficients), m.Components)
	}
	if len(m.Schema.Numeric) == 0 && len(m.Schema.Categorical) == 0 {
		return fmt.Errorf("model artifact: empty feature schema")
	}
	return nil
}

// FeatureSchema builds the preprocessing schema from the artifact, with the
// training-time vocabularies pinned.
func (m *PriceModel) FeatureSchema() *FeatureSchema {
	schema := &FeatureSchema{
		Numeric:     append([]string(nil), m.Schema.Numeric...),
		Categorical: sortedKeys(m.Schema.Categorical),
		Vocabulary:  make(map[string][]string, len(m.Schema.Categorical)),
	}
	for name, vocab := range m.Schema.Categorical {
		schema.Vocabulary[name] = append([]string(nil), vocab...)
	}
	return schema
}

// Predict applies the regression to a projected feature matrix, returning one
// raw prediction per row.
func (m *PriceModel) Predict(x *mat.Dense) ([]float64, error) {
	n, d := x.Dims()
	if d != m.Components {
		return nil, fmt.Errorf("model artifact: input has %d components, model expects %d", d, m.Components)
	}

	weights := mat.NewVecDense(m.Components, m.Coefficients)
	var y mat.VecDense
	y.MulVec(x, weights)

	out := make([]float64, n)
	for i := range out {
		out[i] = y.AtVec(i) + m.Intercept
	}
	return out, nil
}
