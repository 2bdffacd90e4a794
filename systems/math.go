package systems

// Clamp functions for common value ranges

// clampFloat clamps a float64 value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp100 clamps a float64 value to the [0, 100] attribute range.
func clamp100(v float64) float64 {
	return clampFloat(v, 0, 100)
}

// Grid helpers

// sign returns -1, 0 or 1.
func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Chebyshev returns max(|dx|, |dy|) between two cells.
func Chebyshev(x1, y1, x2, y2 int) int {
	dx := abs(x1 - x2)
	dy := abs(y1 - y2)
	if dx > dy {
		return dx
	}
	return dy
}

// WithinBox reports whether (x2, y2) lies in the square of the given
// radius centred on (x1, y1).
func WithinBox(x1, y1, x2, y2, radius int) bool {
	return Chebyshev(x1, y1, x2, y2) <= radius
}
