package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ClutterMask marks the pixels that may contribute to shower intensity.
// false cells are historically clutter-prone and are suppressed. A mask is
// immutable once built and safe to share between goroutines.
type ClutterMask struct {
	weights *mat.Dense // 1 keep, 0 suppress
}

// NewClutterMask builds a mask from row-major keep flags.
func NewClutterMask(rows, cols int, keep []bool) (*ClutterMask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions %dx%d", rows, cols)
	}
	if len(keep) != rows*cols {
		return nil, fmt.Errorf("have %d cells for %dx%d mask", len(keep), rows, cols)
	}

	data := make([]float64, len(keep))
	for i, k := range keep {
		if k {
			data[i] = 1
		}
	}
	return &ClutterMask{weights: mat.NewDense(rows, cols, data)}, nil
}

// Dims returns the mask dimensions.
func (m *ClutterMask) Dims() (rows, cols int) {
	return m.weights.Dims()
}

// Keep reports whether the pixel at row r, column c may carry rain. Pixels
// outside the mask are suppressed.
func (m *ClutterMask) Keep(r, c int) bool {
	rows, cols := m.weights.Dims()
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return false
	}
	return m.weights.At(r, c) == 1
}

// CheckDims returns an error unless the mask is rows×cols.
func (m *ClutterMask) CheckDims(rows, cols int) error {
	mr, mc := m.Dims()
	if mr != rows || mc != cols {
		return fmt.Errorf("mask is %dx%d, want %dx%d", mr, mc, rows, cols)
	}
	return nil
}
