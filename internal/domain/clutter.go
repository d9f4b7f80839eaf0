package domain

const (
	// DefaultClutterThreshold is the gradient magnitude above which a pixel
	// counts as clutter.
	DefaultClutterThreshold = 500.0

	// DefaultClutterMinPixels is the clutter pixel count an image must exceed
	// to be considered cluttered.
	DefaultClutterMinPixels = 130
)

// IsCluttered reports whether more than minPixels cells have a squared
// gradient magnitude above threshold².
func IsCluttered(g Grid, threshold float64, minPixels int) bool {
	return ClutterPixels(g, threshold) > minPixels
}

// ClutterPixels counts the cells whose squared gradient magnitude exceeds
// threshold². Edge cells use one-sided differences, so a constant border
// contributes nothing but a high-contrast border always does.
func ClutterPixels(g Grid, threshold float64) int {
	if g.Empty() {
		return 0
	}
	gx, gy := Gradient(g)
	limit := threshold * threshold

	n := 0
	for i := range gx {
		if gx[i]*gx[i]+gy[i]*gy[i] > limit {
			n++
		}
	}
	return n
}

// Gradient returns the numerical gradient of g along rows (gx) and columns
// (gy), both row-major and the same size as g. Interior cells use central
// differences (f[i+1]-f[i-1])/2; the first and last cell along an axis use
// f[1]-f[0] and f[n-1]-f[n-2]. An axis with fewer than two cells has a zero
// gradient.
func Gradient(g Grid) (gx, gy []float64) {
	gx = make([]float64, len(g.Cells))
	gy = make([]float64, len(g.Cells))

	if g.Rows >= 2 {
		last := g.Rows - 1
		for c := 0; c < g.Cols; c++ {
			gx[c] = g.At(1, c) - g.At(0, c)
			gx[last*g.Cols+c] = g.At(last, c) - g.At(last-1, c)
			for r := 1; r < last; r++ {
				gx[r*g.Cols+c] = (g.At(r+1, c) - g.At(r-1, c)) / 2
			}
		}
	}

	if g.Cols >= 2 {
		last := g.Cols - 1
		for r := 0; r < g.Rows; r++ {
			row := r * g.Cols
			gy[row] = g.At(r, 1) - g.At(r, 0)
			gy[row+last] = g.At(r, last) - g.At(r, last-1)
			for c := 1; c < last; c++ {
				gy[row+c] = (g.At(r, c+1) - g.At(r, c-1)) / 2
			}
		}
	}

	return gx, gy
}
