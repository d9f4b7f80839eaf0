package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func diagonal(n, size int) []bool {
	mask := make([]bool, size*size)
	for i := 0; i < n; i++ {
		mask[i*size+i] = true
	}
	return mask
}

func countTrue(mask []bool) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}

func TestRemoveSmallObjects(t *testing.T) {
	t.Run("diagonal chain is one component", func(t *testing.T) {
		mask := diagonal(MinObjectSize, 12)
		out := RemoveSmallObjects(mask, 12, 12, MinObjectSize)
		assert.Equal(t, mask, out)
	})

	t.Run("component one short of the minimum is removed", func(t *testing.T) {
		mask := diagonal(MinObjectSize-1, 12)
		out := RemoveSmallObjects(mask, 12, 12, MinObjectSize)
		assert.Equal(t, 0, countTrue(out))
	})

	t.Run("components are judged independently", func(t *testing.T) {
		const rows, cols = 6, 10
		mask := make([]bool, rows*cols)
		// 3×3 block at the left: kept.
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				mask[r*cols+c] = true
			}
		}
		// isolated pixel far right: removed.
		mask[5*cols+9] = true

		out := RemoveSmallObjects(mask, rows, cols, MinObjectSize)
		assert.Equal(t, 9, countTrue(out))
		assert.False(t, out[5*cols+9])
		assert.True(t, out[1*cols+1])
	})

	t.Run("does not wrap around row ends", func(t *testing.T) {
		const rows, cols = 2, 5
		mask := []bool{
			false, false, false, false, true,
			true, false, false, false, false,
		}
		out := RemoveSmallObjects(mask, rows, cols, 2)
		assert.Equal(t, 0, countTrue(out))
	})

	t.Run("input is not modified", func(t *testing.T) {
		mask := diagonal(3, 5)
		before := append([]bool(nil), mask...)
		_ = RemoveSmallObjects(mask, 5, 5, MinObjectSize)
		assert.Equal(t, before, mask)
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Empty(t, RemoveSmallObjects(nil, 0, 0, MinObjectSize))
	})
}
