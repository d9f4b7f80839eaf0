package domain

import "gonum.org/v1/gonum/mat"

// RainIntensityThreshold is the shower intensity an image must exceed to be
// rainy. Calibrated upstream; keep as is.
const RainIntensityThreshold = 3000.0

// Classification is the outcome of classifying one grid, with the figures the
// decision was based on.
type Classification struct {
	ShowerIntensity float64 `json:"shower_intensity"`
	ClutterPixels   int     `json:"clutter_pixels"`
	Cluttered       bool    `json:"cluttered"`
	Rainy           bool    `json:"rainy"`
}

// IsRainy reports whether g shows rain that is not explained by clutter.
func IsRainy(g Grid, mask *ClutterMask) bool {
	return Classify(g, mask).Rainy
}

// Classify computes the shower intensity and clutter statistics of g and
// derives the rain decision:
//
//	rainy = intensity > RainIntensityThreshold && !cluttered
func Classify(g Grid, mask *ClutterMask) Classification {
	pixels := ClutterPixels(g, DefaultClutterThreshold)
	c := Classification{
		ShowerIntensity: ShowerIntensity(g, mask),
		ClutterPixels:   pixels,
		Cluttered:       pixels > DefaultClutterMinPixels,
	}
	c.Rainy = c.ShowerIntensity > RainIntensityThreshold && !c.Cluttered
	return c
}

// ShowerIntensity sums the cells of g that belong to blobs of at least
// MinObjectSize pixels and lie inside the mask's keep region. Grid cells
// outside the mask extent are suppressed.
func ShowerIntensity(g Grid, mask *ClutterMask) float64 {
	mr, mc := mask.Dims()
	rows, cols := min(g.Rows, mr), min(g.Cols, mc)
	if rows == 0 || cols == 0 {
		return 0
	}

	signal := make([]bool, len(g.Cells))
	for i, v := range g.Cells {
		signal[i] = v > 0
	}
	objects := RemoveSmallObjects(signal, g.Rows, g.Cols, MinObjectSize)

	weights := make([]float64, len(objects))
	for i, keep := range objects {
		if keep {
			weights[i] = 1
		}
	}

	intensity := mat.NewDense(g.Rows, g.Cols, g.Cells)
	filtered := mat.NewDense(g.Rows, g.Cols, weights)

	var masked mat.Dense
	masked.MulElem(intensity.Slice(0, rows, 0, cols), filtered.Slice(0, rows, 0, cols))
	masked.MulElem(&masked, mask.weights.Slice(0, rows, 0, cols))
	return mat.Sum(&masked)
}
