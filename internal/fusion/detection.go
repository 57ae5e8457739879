package fusion

import (
	"fmt"
	"image"
	"math"
)

const (
	// DefaultSeedlingConfidence is the minimum score a seedling detection needs. Range [0,1].
	DefaultSeedlingConfidence = 0.8

	// DefaultEmptyCellConfidence is the minimum score an empty-cell detection needs. Range [0,1].
	DefaultEmptyCellConfidence = 0.6

	// DefaultIoUThreshold is the overlap above which an empty cell is treated as the
	// same cavity as a seedling. It is deliberately low: slight overlap already
	// suppresses the empty reading. Compared against IoU values in [0,1].
	DefaultIoUThreshold = 0.1
)

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewBox builds a box from its corners.
func NewBox(x1, y1, x2, y2 float64) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns X2 - X1, which is negative for an inverted box.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns Y2 - Y1, which is negative for an inverted box.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the box area, or 0 when the box is degenerate.
func (b Box) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Valid reports whether all coordinates are finite and the box has positive size.
func (b Box) Valid() bool {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// Rect converts the box to integer pixel coordinates, truncating fractions.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

func (b Box) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Detection is one object reported by a detector.
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// Validate checks the box geometry and the confidence range.
func (d Detection) Validate() error {
	if !d.Box.Valid() {
		return fmt.Errorf("box %s has non-positive size", d.Box)
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", d.Confidence)
	}
	return nil
}

// DetectionSet is the ordered output of one detector for one image.
type DetectionSet []Detection

// Validate checks every detection and reports the first invalid one.
// The name identifies the set in the error message.
func (s DetectionSet) Validate(name string) error {
	for i, d := range s {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidDetectionSet, name, i, err)
		}
	}
	return nil
}

// Clone returns a copy that shares no backing array with s.
func (s DetectionSet) Clone() DetectionSet {
	if s == nil {
		return nil
	}
	out := make(DetectionSet, len(s))
	copy(out, s)
	return out
}
