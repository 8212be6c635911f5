/**
 * @description
 * Feature schema and raw feature batch types for the price estimation pipeline.
 * The schema is explicit: every attribute is declared numeric or categorical,
 * and anything undeclared is dropped. No runtime type sniffing.
 */

package analysis

import "sort"

// MissingCategoryToken replaces absent categorical values before encoding.
const MissingCategoryToken = "Unknown"

// FeatureKind classifies how an attribute enters the feature matrix.
type FeatureKind int

const (
	KindExcluded FeatureKind = iota
	KindNumeric
	KindCategorical
)

// FeatureSchema declares which attributes are numeric and which are
// categorical. Attributes absent from both lists are dropped, not passed
// through. Column order in the encoded matrix is: numeric features in
// declaration order, then categorical features in declaration order, each
// expanded to its one-hot vocabulary.
type FeatureSchema struct {
	Numeric     []string
	Categorical []string

	// Vocabulary pins the one-hot vocabulary per categorical feature so the
	// encoded width stays stable across batches (and matches what the
	// regression model was trained on). Features without a pinned vocabulary
	// are fitted from the batch.
	Vocabulary map[string][]string
}

// Kind reports how the named attribute is treated.
func (s *FeatureSchema) Kind(name string) FeatureKind {
	for _, n := range s.Numeric {
		if n == name {
			return KindNumeric
		}
	}
	for _, n := range s.Categorical {
		if n == name {
			return KindCategorical
		}
	}
	return KindExcluded
}

// Frame is a column-oriented batch of raw feature values.
// Missing numeric values are NaN; missing categorical values are "".
type Frame struct {
	N           int
	Numeric     map[string][]float64
	Categorical map[string][]string
}

// NewFrame allocates an empty frame for n records.
func NewFrame(n int) *Frame {
	return &Frame{
		N:           n,
		Numeric:     make(map[string][]float64),
		Categorical: make(map[string][]string),
	}
}

// sortedKeys returns map keys in deterministic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
