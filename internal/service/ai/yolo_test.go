package ai

import (
	"errors"
	"testing"

	"seedcounter/internal/fusion"
)

// tensor builds a [1, 4+classes, anchors] buffer from per-anchor rows of
// cx, cy, w, h, score0, score1, ...
func tensor(classes int, rows ...[]float32) []float32 {
	anchors := len(rows)
	data := make([]float32, (4+classes)*anchors)
	for i, r := range rows {
		for f, v := range r {
			data[f*anchors+i] = v
		}
	}
	return data
}

// ============================================================================
// Class lookup
// ============================================================================

func TestClassID(t *testing.T) {
	names := []string{"celda_vacia", "plantula"}

	id, err := ClassID(names, "plantula")
	if err != nil || id != 1 {
		t.Errorf("Expected 1, got %d (%v)", id, err)
	}

	id, err = ClassID(names, "Celda_Vacia")
	if err != nil || id != 0 {
		t.Errorf("Expected case-insensitive match at 0, got %d (%v)", id, err)
	}

	if _, err := ClassID(names, "maleza"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("Expected ErrClassNotFound, got %v", err)
	}
}

// ============================================================================
// Output decoding
// ============================================================================

func TestDecodeYOLO_FiltersClassAndConfidence(t *testing.T) {
	data := tensor(2,
		[]float32{50, 50, 20, 20, 0.9, 0.1},    // class 0, kept
		[]float32{100, 100, 20, 20, 0.2, 0.95}, // class 1 wins
		[]float32{150, 150, 20, 20, 0.5, 0.1},  // below confidence
	)

	cands, err := decodeYOLO(data, 2, 3, 0, 0.6, 1, 640, 640)
	if err != nil {
		t.Fatalf("decodeYOLO failed: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(cands))
	}

	expected := fusion.NewBox(40, 40, 60, 60)
	if cands[0].box != expected {
		t.Errorf("Expected box %v, got %v", expected, cands[0].box)
	}
	if cands[0].score != 0.9 {
		t.Errorf("Expected score 0.9, got %v", cands[0].score)
	}
}

func TestDecodeYOLO_ScalesAndClips(t *testing.T) {
	data := tensor(1,
		[]float32{10, 10, 40, 40, 0.8}, // extends past the top-left corner
	)

	cands, err := decodeYOLO(data, 1, 1, 0, 0.5, 2, 100, 80)
	if err != nil {
		t.Fatalf("decodeYOLO failed: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(cands))
	}

	expected := fusion.NewBox(0, 0, 60, 60)
	if cands[0].box != expected {
		t.Errorf("Expected box %v, got %v", expected, cands[0].box)
	}
}

func TestDecodeYOLO_DropsBoxesOutsideImage(t *testing.T) {
	data := tensor(1, []float32{500, 500, 10, 10, 0.9})

	cands, err := decodeYOLO(data, 1, 1, 0, 0.5, 1, 100, 100)
	if err != nil {
		t.Fatalf("decodeYOLO failed: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("Expected box outside the image to be dropped, got %v", cands)
	}
}

func TestDecodeYOLO_BadShape(t *testing.T) {
	if _, err := decodeYOLO(make([]float32, 5), 2, 3, 0, 0.5, 1, 10, 10); err == nil {
		t.Error("Expected error for short buffer")
	}
	if _, err := decodeYOLO(make([]float32, 15), 1, 3, 2, 0.5, 1, 10, 10); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("Expected ErrClassNotFound for out of range class, got %v", err)
	}
}

func TestToDetections(t *testing.T) {
	cands := []candidate{
		{box: fusion.NewBox(0, 0, 10, 10), score: 0.9},
		{box: fusion.NewBox(5, 5, 15, 15), score: 0.7},
	}

	set := toDetections(cands, []int{1, 7}, "plantula")
	if len(set) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(set))
	}
	if set[0].Box != cands[1].box || set[0].Label != "plantula" {
		t.Errorf("Unexpected detection %+v", set[0])
	}
	if err := set.Validate("seedlings"); err != nil {
		t.Errorf("Decoded detections should validate: %v", err)
	}
}
