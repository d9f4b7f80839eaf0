package domain

import "fmt"

// RawImage is a decoded radar image before normalization.
type RawImage struct {
	Rows  int
	Cols  int
	Cells []float64 // row-major, len Rows*Cols

	// OutOfImage is the sentinel declared in the file's calibration metadata.
	OutOfImage float64
}

// Validate checks that the cell slice matches the declared dimensions.
func (r RawImage) Validate() error {
	if r.Rows < 0 || r.Cols < 0 {
		return fmt.Errorf("negative dimensions %dx%d", r.Rows, r.Cols)
	}
	if len(r.Cells) != r.Rows*r.Cols {
		return fmt.Errorf("have %d cells for %dx%d image", len(r.Cells), r.Rows, r.Cols)
	}
	return nil
}

// Grid is a normalized reflectivity grid. Cells are non-negative and 0 means
// no signal.
type Grid struct {
	Rows  int
	Cols  int
	Cells []float64 // row-major
}

// NewGrid returns a zero-filled grid.
func NewGrid(rows, cols int) Grid {
	return Grid{Rows: rows, Cols: cols, Cells: make([]float64, rows*cols)}
}

// At returns the cell at row r, column c.
func (g Grid) At(r, c int) float64 {
	return g.Cells[r*g.Cols+c]
}

// Set writes the cell at row r, column c.
func (g Grid) Set(r, c int, v float64) {
	g.Cells[r*g.Cols+c] = v
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return g.Rows == 0 || g.Cols == 0
}

// NormalizeImage zeroes out-of-image pixels: first those equal to the declared
// sentinel, then those equal to the top-left corner value. The raw cells are
// left untouched.
func NormalizeImage(raw RawImage) Grid {
	g := Grid{Rows: raw.Rows, Cols: raw.Cols, Cells: make([]float64, len(raw.Cells))}
	copy(g.Cells, raw.Cells)
	if len(g.Cells) == 0 {
		return g
	}

	for i, v := range g.Cells {
		if v == raw.OutOfImage {
			g.Cells[i] = 0
		}
	}

	corner := g.Cells[0]
	for i, v := range g.Cells {
		if v == corner {
			g.Cells[i] = 0
		}
	}
	return g
}
