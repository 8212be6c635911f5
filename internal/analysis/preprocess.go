/**
 * @description
 * Feature preprocessing: mean imputation, standardization, and one-hot
 * encoding. Pure functions over a batch — fit statistics are returned to the
 * caller rather than held in hidden service state.
 *
 * @dependencies
 * - gonum.org/v1/gonum/mat
 *
 * @notes
 * - Statistics are per-batch. Feature scaling therefore drifts between
 *   differently-sized batches; that is a documented property of the pipeline,
 *   not something this package tries to hide.
 */

package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// FitStats captures the per-batch statistics used to build the feature matrix.
// Callers may persist and reuse them, but the pipeline itself re-fits on every
// batch.
type FitStats struct {
	Means      map[string]float64
	Stds       map[string]float64
	Vocabulary map[string][]string
	Width      int
}

// Preprocess converts a raw feature frame into a homogeneous real-valued
// matrix per the schema:
//   - numeric: missing values imputed with the batch mean, then standardized
//     to zero mean / unit variance (zero variance degrades to a divisor of 1)
//   - categorical: missing values replaced with MissingCategoryToken, then
//     one-hot encoded against the pinned or batch-fitted vocabulary; values
//     outside the vocabulary encode to all zeros
//
// Attributes not named by the schema are dropped.
func Preprocess(f *Frame, schema *FeatureSchema) (*mat.Dense, *FitStats, error) {
	if f.N == 0 {
		return nil, nil, fmt.Errorf("analysis: empty batch")
	}

	stats := &FitStats{
		Means:      make(map[string]float64),
		Stds:       make(map[string]float64),
		Vocabulary: make(map[string][]string),
	}

	width := len(schema.Numeric)
	vocabs := make([][]string, len(schema.Categorical))
	for i, name := range schema.Categorical {
		col, ok := f.Categorical[name]
		if !ok {
			return nil, nil, fmt.Errorf("analysis: categorical feature %q missing from batch", name)
		}
		if len(col) != f.N {
			return nil, nil, fmt.Errorf("analysis: feature %q has %d values, batch has %d records", name, len(col), f.N)
		}
		vocab := schema.Vocabulary[name]
		if vocab == nil {
			vocab = fitVocabulary(col)
		}
		vocabs[i] = vocab
		stats.Vocabulary[name] = vocab
		width += len(vocab)
	}

	out := mat.NewDense(f.N, width, nil)

	for j, name := range schema.Numeric {
		col, ok := f.Numeric[name]
		if !ok {
			return nil, nil, fmt.Errorf("analysis: numeric feature %q missing from batch", name)
		}
		if len(col) != f.N {
			return nil, nil, fmt.Errorf("analysis: feature %q has %d values, batch has %d records", name, len(col), f.N)
		}

		mean := imputationMean(col)
		variance := 0.0
		for i := range col {
			v := col[i]
			if math.IsNaN(v) {
				v = mean
			}
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(f.N))
		if std == 0 {
			// A batch of one record, or a constant column: standardization
			// degenerates to centering only.
			std = 1
		}
		stats.Means[name] = mean
		stats.Stds[name] = std

		for i := range col {
			v := col[i]
			if math.IsNaN(v) {
				v = mean
			}
			out.Set(i, j, (v-mean)/std)
		}
	}

	offset := len(schema.Numeric)
	for ci, name := range schema.Categorical {
		vocab := vocabs[ci]
		index := make(map[string]int, len(vocab))
		for vi, v := range vocab {
			index[v] = vi
		}
		col := f.Categorical[name]
		for i, raw := range col {
			value := raw
			if value == "" {
				value = MissingCategoryToken
			}
			if vi, ok := index[value]; ok {
				out.Set(i, offset+vi, 1)
			}
			// Out-of-vocabulary values stay all-zero.
		}
		offset += len(vocab)
	}

	stats.Width = width
	return out, stats, nil
}

// imputationMean is the arithmetic mean of the observed (non-NaN) values.
// A column with no observations imputes to zero.
func imputationMean(col []float64) float64 {
	sum, count := 0.0, 0
	for _, v := range col {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// fitVocabulary collects the sorted distinct values of a column, treating
// missing values as the missing token.
func fitVocabulary(col []string) []string {
	seen := make(map[string]bool)
	for _, v := range col {
		if v == "" {
			v = MissingCategoryToken
		}
		seen[v] = true
	}
	vocab := make([]string, 0, len(seen))
	for v := range seen {
		vocab = append(vocab, v)
	}
	sort.Strings(vocab)
	return vocab
}
