package ai

import (
	"fmt"
	"image"
	"math"

	"seedcounter/internal/fusion"
)

// candidate is one anchor that passed the class and confidence filter, in source
// image coordinates.
type candidate struct {
	box   fusion.Box
	score float32
}

// decodeYOLO reads a YOLOv8 output tensor laid out as [1, 4+classes, anchors].
// Each anchor holds cx, cy, w, h in network input pixels followed by one score per
// class. Only anchors whose best class is classID with a score of at least
// confidence are kept. Boxes are scaled back by scale and clipped to width x height.
func decodeYOLO(data []float32, classes, anchors, classID int, confidence, scale float32, width, height int) ([]candidate, error) {
	rows := 4 + classes
	if classes < 1 || anchors < 0 || len(data) < rows*anchors {
		return nil, fmt.Errorf("unexpected output size %d for %d classes and %d anchors", len(data), classes, anchors)
	}
	if classID < 0 || classID >= classes {
		return nil, fmt.Errorf("%w: class id %d out of range", ErrClassNotFound, classID)
	}

	var out []candidate
	for i := 0; i < anchors; i++ {
		best, bestScore := 0, float32(-1)
		for c := 0; c < classes; c++ {
			if s := data[(4+c)*anchors+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if best != classID || bestScore < confidence {
			continue
		}

		cx := data[i]
		cy := data[anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		box := fusion.NewBox(
			clamp(float64((cx-w/2)*scale), 0, float64(width)),
			clamp(float64((cy-h/2)*scale), 0, float64(height)),
			clamp(float64((cx+w/2)*scale), 0, float64(width)),
			clamp(float64((cy+h/2)*scale), 0, float64(height)),
		)
		if !box.Valid() {
			continue
		}
		out = append(out, candidate{box: box, score: bestScore})
	}
	return out, nil
}

// toDetections keeps the candidates selected by NMS, in index order.
func toDetections(cands []candidate, indices []int, label string) fusion.DetectionSet {
	set := make(fusion.DetectionSet, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(cands) {
			continue
		}
		set = append(set, fusion.Detection{
			Box:        cands[idx].box,
			Confidence: float64(cands[idx].score),
			Label:      label,
		})
	}
	return set
}

func candidateRects(cands []candidate) ([]image.Rectangle, []float32) {
	rects := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))
	for i, c := range cands {
		rects[i] = c.box.Rect()
		scores[i] = c.score
	}
	return rects, scores
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
