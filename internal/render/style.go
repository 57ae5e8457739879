package render

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

var (
	// SeedlingColor is the default box color for seedlings (green).
	SeedlingColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	// EmptyCellColor is the default box color for empty cells (blue).
	EmptyCellColor = color.RGBA{R: 0, G: 100, B: 255, A: 0}
)

// Style controls how detections are drawn.
type Style struct {
	SeedlingColor  color.RGBA
	EmptyCellColor color.RGBA
	BoxThickness   int
	FontFace       gocv.HersheyFont
	FontScale      float64
	TextThickness  int
	// LabelOffset is the distance in pixels between the label baseline and the box top.
	LabelOffset int
}

// DefaultStyle returns the style used for tray annotations.
func DefaultStyle() Style {
	return Style{
		SeedlingColor:  SeedlingColor,
		EmptyCellColor: EmptyCellColor,
		BoxThickness:   2,
		FontFace:       gocv.FontHersheySimplex,
		FontScale:      0.5,
		TextThickness:  2,
		LabelOffset:    10,
	}
}

// ParseColor converts a hex string such as "#00FF00" to an RGB color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0}, nil
}

// WithColors returns a copy of s using the given hex colors.
func (s Style) WithColors(seedlingHex, emptyCellHex string) (Style, error) {
	seedling, err := ParseColor(seedlingHex)
	if err != nil {
		return s, err
	}
	emptyCell, err := ParseColor(emptyCellHex)
	if err != nil {
		return s, err
	}
	s.SeedlingColor = seedling
	s.EmptyCellColor = emptyCell
	return s, nil
}
