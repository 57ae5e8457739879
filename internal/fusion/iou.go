package fusion

import "math"

// IoU returns the intersection-over-union of two boxes.
//
// The overlap width and height are clamped to zero before multiplying, so
// disjoint boxes yield 0. If the union has no area (degenerate boxes) the
// result is 0 rather than NaN.
func IoU(a, b Box) float64 {
	x1 := math.Max(a.X1, b.X1)
	y1 := math.Max(a.Y1, b.Y1)
	x2 := math.Min(a.X2, b.X2)
	y2 := math.Min(a.Y2, b.Y2)

	intersection := math.Max(0, x2-x1) * math.Max(0, y2-y1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 || math.IsNaN(union) {
		return 0
	}
	return intersection / union
}
