package domain

// MinObjectSize is the smallest 8-connected blob, in pixels, kept as rain.
const MinObjectSize = 9

// neighbours8 lists the row/column offsets of the 8-connected neighbourhood.
var neighbours8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// RemoveSmallObjects returns a copy of mask (rows×cols, row-major) with every
// 8-connected component smaller than minSize cells cleared.
func RemoveSmallObjects(mask []bool, rows, cols, minSize int) []bool {
	out := make([]bool, len(mask))
	if rows == 0 || cols == 0 {
		return out
	}

	visited := make([]bool, len(mask))
	var component, stack []int

	for start, set := range mask {
		if !set || visited[start] {
			continue
		}

		component = component[:0]
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, idx)

			r, c := idx/cols, idx%cols
			for _, d := range neighbours8 {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				n := nr*cols + nc
				if mask[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		if len(component) >= minSize {
			for _, idx := range component {
				out[idx] = true
			}
		}
	}

	return out
}
