/**
 * @description
 * Dimensionality reduction: projects the preprocessed feature matrix onto a
 * fixed number of principal components.
 *
 * @dependencies
 * - gonum.org/v1/gonum/mat
 * - gonum.org/v1/gonum/stat
 *
 * @notes
 * - The decomposition is refit on every batch, so identical records can
 *   project differently in different batches. Known coupling, kept on purpose.
 */

package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientFeatures means the encoded feature width is narrower than
	// the projection. The caller decides the batch-level fallback; this package
	// never truncates silently.
	ErrInsufficientFeatures = errors.New("analysis: fewer input features than projection components")

	// ErrInsufficientSamples means the batch has too few rows for the
	// decomposition to yield the requested number of components.
	ErrInsufficientSamples = errors.New("analysis: fewer samples than projection components")
)

// ReduceTo fits principal components on x and projects its rows onto the first
// `components` directions. Deterministic for a fixed input batch.
func ReduceTo(x *mat.Dense, components int) (*mat.Dense, error) {
	if components <= 0 {
		return nil, fmt.Errorf("analysis: invalid component count %d", components)
	}

	n, d := x.Dims()
	if d < components {
		return nil, fmt.Errorf("%w: have %d features, need %d", ErrInsufficientFeatures, d, components)
	}
	if n < components {
		return nil, fmt.Errorf("%w: have %d rows, need %d", ErrInsufficientSamples, n, components)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("analysis: principal component decomposition failed")
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	if _, k := vectors.Dims(); k < components {
		return nil, fmt.Errorf("%w: decomposition yielded %d components, need %d", ErrInsufficientSamples, k, components)
	}

	centered := centerColumns(x)
	var projected mat.Dense
	projected.Mul(centered, vectors.Slice(0, d, 0, components))
	return &projected, nil
}

// centerColumns returns a copy of x with each column shifted to zero mean.
// Principal directions are computed on centered data, so the projection input
// has to match.
func centerColumns(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	centered := mat.DenseCopyOf(x)
	for j := 0; j < d; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += x.At(i, j)
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			centered.Set(i, j, x.At(i, j)-mean)
		}
	}
	return centered
}
