package analysis

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testMatrix(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		// Deterministic, non-degenerate fill.
		data[i] = float64((i*7)%13) + float64(i%3)*0.5
	}
	return mat.NewDense(rows, cols, data)
}

func TestReduceToInsufficientFeatures(t *testing.T) {
	x := testMatrix(5, 2)
	_, err := ReduceTo(x, 3)
	if !errors.Is(err, ErrInsufficientFeatures) {
		t.Fatalf("err = %v, want ErrInsufficientFeatures", err)
	}
}

func TestReduceToInsufficientSamples(t *testing.T) {
	x := testMatrix(2, 5)
	_, err := ReduceTo(x, 3)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("err = %v, want ErrInsufficientSamples", err)
	}
}

func TestReduceToInvalidComponents(t *testing.T) {
	if _, err := ReduceTo(testMatrix(3, 3), 0); err == nil {
		t.Fatal("expected error for zero components")
	}
}

func TestReduceToDimensions(t *testing.T) {
	x := testMatrix(6, 4)
	projected, err := ReduceTo(x, 2)
	if err != nil {
		t.Fatalf("ReduceTo failed: %v", err)
	}
	r, c := projected.Dims()
	if r != 6 || c != 2 {
		t.Errorf("projected dims = %dx%d, want 6x2", r, c)
	}
}

func TestReduceToDeterministic(t *testing.T) {
	x := testMatrix(6, 4)
	a, err := ReduceTo(x, 2)
	if err != nil {
		t.Fatalf("first ReduceTo failed: %v", err)
	}
	b, err := ReduceTo(x, 2)
	if err != nil {
		t.Fatalf("second ReduceTo failed: %v", err)
	}
	if !mat.EqualApprox(a, b, 1e-12) {
		t.Error("identical input batches projected differently")
	}
}
