package render

import (
	"fmt"
	"image"
	"image/color"

	"seedcounter/internal/fusion"

	"gocv.io/x/gocv"
)

// Renderer draws detections onto a copy of a tray image.
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer with the given style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// Annotate returns a new BGR image with every seedling and empty cell drawn as a
// labeled rectangle. The source Mat is never modified. The caller owns the
// returned Mat and must Close it.
func (r *Renderer) Annotate(src gocv.Mat, seedlings, emptyCells fusion.DetectionSet) (gocv.Mat, error) {
	if src.Empty() || src.Rows() == 0 || src.Cols() == 0 {
		return gocv.NewMat(), fusion.ErrEmptyInputImage
	}

	dst, err := toBGR(src)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", fusion.ErrComputation, err)
	}

	for _, d := range seedlings {
		if err := r.drawDetection(&dst, d, r.style.SeedlingColor); err != nil {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("%w: %v", fusion.ErrComputation, err)
		}
	}
	for _, d := range emptyCells {
		if err := r.drawDetection(&dst, d, r.style.EmptyCellColor); err != nil {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("%w: %v", fusion.ErrComputation, err)
		}
	}

	return dst, nil
}

// drawDetection draws the box and its "label confidence" text above it.
func (r *Renderer) drawDetection(img *gocv.Mat, d fusion.Detection, c color.RGBA) error {
	rect := d.Box.Rect()
	if err := gocv.Rectangle(img, rect, c, r.style.BoxThickness); err != nil {
		return fmt.Errorf("failed to draw rectangle: %v", err)
	}

	label := Label(d)
	size, baseline := gocv.GetTextSizeWithBaseline(label, r.style.FontFace, r.style.FontScale, r.style.TextThickness)
	origin := LabelOrigin(rect, size, baseline, img.Cols(), img.Rows(), r.style.LabelOffset)

	if err := gocv.PutText(img, label, origin, r.style.FontFace, r.style.FontScale, c, r.style.TextThickness); err != nil {
		return fmt.Errorf("failed to draw text: %v", err)
	}
	return nil
}

// Label formats the class name and the confidence with two decimals.
func Label(d fusion.Detection) string {
	return fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
}

// LabelOrigin places the text baseline offset pixels above the top-left corner
// of box, then clamps it so the whole text (size, plus baseline below it) fits
// inside a width x height canvas. Text wider than the canvas starts at x=0.
func LabelOrigin(box image.Rectangle, size image.Point, baseline, width, height, offset int) image.Point {
	x := box.Min.X
	if x > width-size.X {
		x = width - size.X
	}
	if x < 0 {
		x = 0
	}

	y := box.Min.Y - offset
	if y+baseline > height-1 {
		y = height - 1 - baseline
	}
	if y-size.Y < 0 {
		y = size.Y
	}

	return image.Pt(x, y)
}

// toBGR clones src as an 8-bit, 3-channel image.
func toBGR(src gocv.Mat) (gocv.Mat, error) {
	switch src.Type() {
	case gocv.MatTypeCV8UC3:
		return src.Clone(), nil
	case gocv.MatTypeCV8UC1:
		dst := gocv.NewMat()
		if err := gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR); err != nil {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("failed to convert grayscale image: %v", err)
		}
		return dst, nil
	case gocv.MatTypeCV8UC4:
		dst := gocv.NewMat()
		if err := gocv.CvtColor(src, &dst, gocv.ColorBGRAToBGR); err != nil {
			dst.Close()
			return gocv.NewMat(), fmt.Errorf("failed to convert BGRA image: %v", err)
		}
		return dst, nil
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported image type %v", src.Type())
	}
}
