package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blobValue = 200.0

func keepAllMask(t *testing.T, rows, cols int) *ClutterMask {
	t.Helper()
	keep := make([]bool, rows*cols)
	for i := range keep {
		keep[i] = true
	}
	m, err := NewClutterMask(rows, cols, keep)
	require.NoError(t, err)
	return m
}

// windowMask keeps only the cells in rows [r0,r1) and columns [c0,c1).
func windowMask(t *testing.T, rows, cols, r0, r1, c0, c1 int) *ClutterMask {
	t.Helper()
	keep := make([]bool, rows*cols)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			keep[r*cols+c] = true
		}
	}
	m, err := NewClutterMask(rows, cols, keep)
	require.NoError(t, err)
	return m
}

// blob fills a h×w rectangle with v starting at (r0, c0).
func blob(g Grid, r0, c0, h, w int, v float64) {
	for r := r0; r < r0+h; r++ {
		for c := c0; c < c0+w; c++ {
			g.Set(r, c, v)
		}
	}
}

func TestClassify(t *testing.T) {
	const size = 30
	mask := windowMask(t, size, size, 5, 25, 5, 25)

	t.Run("all-zero grid is not rainy", func(t *testing.T) {
		g := NewGrid(10, 10)
		c := Classify(g, keepAllMask(t, 10, 10))

		assert.Equal(t, Classification{}, c)
		assert.False(t, IsRainy(g, keepAllMask(t, 10, 10)))
	})

	t.Run("20-pixel blob inside the mask is rainy", func(t *testing.T) {
		g := NewGrid(size, size)
		blob(g, 10, 10, 4, 5, blobValue)

		c := Classify(g, mask)

		assert.InDelta(t, 4000.0, c.ShowerIntensity, 1e-9)
		assert.Equal(t, 0, c.ClutterPixels)
		assert.False(t, c.Cluttered)
		assert.True(t, c.Rainy)
	})

	t.Run("5-pixel blob is filtered out", func(t *testing.T) {
		g := NewGrid(size, size)
		g.Set(12, 12, blobValue)
		g.Set(11, 12, blobValue)
		g.Set(13, 12, blobValue)
		g.Set(12, 11, blobValue)
		g.Set(12, 13, blobValue)

		c := Classify(g, mask)

		assert.Zero(t, c.ShowerIntensity)
		assert.False(t, c.Rainy)
	})

	t.Run("blob outside the mask is suppressed", func(t *testing.T) {
		g := NewGrid(size, size)
		blob(g, 0, 0, 4, 5, blobValue)

		c := Classify(g, mask)

		assert.Zero(t, c.ShowerIntensity)
		assert.False(t, c.Rainy)
	})

	t.Run("blob straddling the mask edge counts only inside", func(t *testing.T) {
		g := NewGrid(size, size)
		blob(g, 3, 10, 4, 5, blobValue) // rows 3..6, rows 5 and 6 are kept

		c := Classify(g, mask)

		assert.InDelta(t, 2*5*blobValue, c.ShowerIntensity, 1e-9)
		assert.False(t, c.Rainy)
	})

	t.Run("clutter vetoes rain", func(t *testing.T) {
		g := blockCheckerboard(20, 20, testContrast)

		c := Classify(g, keepAllMask(t, 20, 20))

		assert.Greater(t, c.ShowerIntensity, RainIntensityThreshold)
		assert.True(t, c.Cluttered)
		assert.Equal(t, 18*18, c.ClutterPixels)
		assert.False(t, c.Rainy)
	})

	t.Run("intensity must exceed the threshold", func(t *testing.T) {
		g := NewGrid(size, size)
		blob(g, 10, 10, 3, 5, blobValue) // 15 × 200 = 3000

		c := Classify(g, mask)

		assert.InDelta(t, RainIntensityThreshold, c.ShowerIntensity, 1e-9)
		assert.False(t, c.Rainy)
	})
}

func TestShowerIntensity_DimensionMismatch(t *testing.T) {
	t.Run("grid larger than mask", func(t *testing.T) {
		g := NewGrid(12, 12)
		blob(g, 0, 0, 12, 12, 10)

		// only the top-left 6×6 of the grid lies inside the mask
		assert.InDelta(t, 36*10.0, ShowerIntensity(g, keepAllMask(t, 6, 6)), 1e-9)
	})

	t.Run("grid smaller than mask", func(t *testing.T) {
		g := NewGrid(4, 4)
		blob(g, 0, 0, 4, 4, 10)

		assert.InDelta(t, 160.0, ShowerIntensity(g, keepAllMask(t, 20, 20)), 1e-9)
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Zero(t, ShowerIntensity(Grid{}, keepAllMask(t, 5, 5)))
		assert.False(t, IsRainy(Grid{}, keepAllMask(t, 5, 5)))
	})
}

func TestClassify_Pure(t *testing.T) {
	g := NewGrid(30, 30)
	blob(g, 10, 10, 4, 5, blobValue)
	mask := keepAllMask(t, 30, 30)
	before := append([]float64(nil), g.Cells...)

	first := Classify(g, mask)
	second := Classify(g, mask)

	assert.Equal(t, first, second)
	assert.Equal(t, before, g.Cells)
	assert.True(t, mask.Keep(0, 0), "mask must not be modified")
}

func TestNewClutterMask(t *testing.T) {
	m, err := NewClutterMask(2, 2, []bool{true, false, false, true})
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.True(t, m.Keep(0, 0))
	assert.False(t, m.Keep(0, 1))
	assert.False(t, m.Keep(5, 5), "outside the mask is suppressed")
	assert.NoError(t, m.CheckDims(2, 2))
	assert.Error(t, m.CheckDims(765, 700))

	_, err = NewClutterMask(2, 2, []bool{true})
	assert.Error(t, err)

	_, err = NewClutterMask(0, 3, nil)
	assert.Error(t, err)
}
