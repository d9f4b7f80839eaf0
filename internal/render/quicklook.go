// Package render draws quicklook images of reflectivity grids.
package render

import (
	"fmt"
	"math"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const width = 6 * vg.Inch

// gridXYZ adapts a Grid to plotter.GridXYZ. Row 0 of the grid is drawn at
// the top, as in the radar composite. Cells the mask suppresses are NaN and
// left blank.
type gridXYZ struct {
	g    domain.Grid
	mask *domain.ClutterMask
}

func (x gridXYZ) Dims() (c, r int) { return x.g.Cols, x.g.Rows }
func (x gridXYZ) X(c int) float64  { return float64(c) }
func (x gridXYZ) Y(r int) float64  { return float64(r) }

func (x gridXYZ) Z(c, r int) float64 {
	row := x.g.Rows - 1 - r
	if x.mask != nil && !x.mask.Keep(row, c) {
		return math.NaN()
	}
	return x.g.At(row, c)
}

// Title summarizes a label for the quicklook header.
func Title(l domain.Label) string {
	if !l.Known() {
		return fmt.Sprintf("%s: unknown (%v)", l.Filename, l.Err)
	}
	c := l.Classification
	return fmt.Sprintf("%s: %s, intensity %.0f, clutter pixels %d",
		l.Filename, l.Outcome(), c.ShowerIntensity, c.ClutterPixels)
}

// Quicklook renders g as a heat map to path. The image format follows the
// file extension (png, svg, pdf...). A nil mask draws every cell.
func Quicklook(g domain.Grid, mask *domain.ClutterMask, title, path string) error {
	if g.Empty() {
		return fmt.Errorf("render %s: empty grid", path)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.Add(plotter.NewHeatMap(gridXYZ{g: g, mask: mask}, palette.Heat(16, 1)))

	height := width * vg.Length(g.Rows) / vg.Length(g.Cols)
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}
