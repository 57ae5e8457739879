package fusion

import (
	"fmt"
	"math"
)

// Suppression records why an empty-cell detection was dropped.
type Suppression struct {
	EmptyCellIndex int     `json:"empty_cell_index"`
	SeedlingIndex  int     `json:"seedling_index"`
	IoU            float64 `json:"iou"`
}

// Resolve returns the empty cells that do not overlap any seedling by more
// than threshold. The input order is preserved and neither input is modified.
func Resolve(seedlings, emptyCells DetectionSet, threshold float64) (DetectionSet, error) {
	kept, _, err := ResolveDetailed(seedlings, emptyCells, threshold)
	return kept, err
}

// ResolveDetailed works like Resolve and also reports every suppression.
//
// Each empty cell is compared with the seedlings in order and dropped at the
// first seedling whose IoU exceeds threshold; the remaining seedlings are not
// examined for that cell.
func ResolveDetailed(seedlings, emptyCells DetectionSet, threshold float64) (DetectionSet, []Suppression, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	if err := seedlings.Validate("seedlings"); err != nil {
		return nil, nil, err
	}
	if err := emptyCells.Validate("empty_cells"); err != nil {
		return nil, nil, err
	}

	kept := make(DetectionSet, 0, len(emptyCells))
	var suppressed []Suppression

	for i, cell := range emptyCells {
		overlapped := false
		for j, seedling := range seedlings {
			iou := IoU(cell.Box, seedling.Box)
			if iou > threshold {
				suppressed = append(suppressed, Suppression{EmptyCellIndex: i, SeedlingIndex: j, IoU: iou})
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, cell)
		}
	}

	return kept, suppressed, nil
}
