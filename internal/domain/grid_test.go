package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeImage(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawImage
		expected []float64
	}{
		{
			name: "sentinel differs from corner",
			raw: RawImage{
				Rows: 3, Cols: 3, OutOfImage: 255,
				Cells: []float64{
					244, 5, 255,
					255, 10, 244,
					0, 244, 7,
				},
			},
			expected: []float64{
				0, 5, 0,
				0, 10, 0,
				0, 0, 7,
			},
		},
		{
			name: "sentinel equals corner",
			raw: RawImage{
				Rows: 2, Cols: 3, OutOfImage: 255,
				Cells: []float64{
					255, 3, 255,
					255, 9, 1,
				},
			},
			expected: []float64{
				0, 3, 0,
				0, 9, 1,
			},
		},
		{
			name: "declared sentinel absent",
			raw: RawImage{
				Rows: 2, Cols: 2, OutOfImage: 255,
				Cells: []float64{
					244, 12,
					244, 244,
				},
			},
			expected: []float64{
				0, 12,
				0, 0,
			},
		},
		{
			name:     "empty image",
			raw:      RawImage{OutOfImage: 255},
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := append([]float64(nil), tt.raw.Cells...)

			g := NormalizeImage(tt.raw)

			assert.Equal(t, tt.raw.Rows, g.Rows)
			assert.Equal(t, tt.raw.Cols, g.Cols)
			assert.Equal(t, tt.expected, g.Cells)
			assert.Equal(t, original, tt.raw.Cells, "raw cells must not be modified")
		})
	}
}

func TestRawImageValidate(t *testing.T) {
	require.NoError(t, RawImage{Rows: 2, Cols: 2, Cells: make([]float64, 4)}.Validate())
	require.NoError(t, RawImage{}.Validate())

	err := RawImage{Rows: 2, Cols: 3, Cells: make([]float64, 4)}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2x3")

	assert.Error(t, RawImage{Rows: -1, Cols: 2}.Validate())
}

func TestGridAccessors(t *testing.T) {
	g := NewGrid(2, 3)
	g.Set(1, 2, 42)

	assert.Equal(t, 42.0, g.At(1, 2))
	assert.Equal(t, 42.0, g.Cells[5])
	assert.False(t, g.Empty())
	assert.True(t, NewGrid(0, 4).Empty())
}
