package fusion

import "strconv"

// Stats is the numeric summary of one tray.
type Stats struct {
	SeedlingCount         int     `json:"seedling_count"`
	EmptyCellCount        int     `json:"empty_cell_count"`
	TotalCavities         int     `json:"total_cavities"`
	GerminationPercentage float64 `json:"germination_percentage"`
}

// ComputeStats counts seedlings and the already filtered empty cells.
// A tray without cavities has a germination percentage of 0.
func ComputeStats(seedlings, filteredEmptyCells DetectionSet) Stats {
	s := Stats{
		SeedlingCount:  len(seedlings),
		EmptyCellCount: len(filteredEmptyCells),
	}
	s.TotalCavities = s.SeedlingCount + s.EmptyCellCount
	s.GerminationPercentage = Percentage(s.SeedlingCount, s.TotalCavities)
	return s
}

// Percentage returns 100*part/total rounded to two decimals, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// Fields flattens the stats into a field name to number mapping.
func (s Stats) Fields() map[string]float64 {
	return map[string]float64{
		"seedling_count":         float64(s.SeedlingCount),
		"empty_cell_count":       float64(s.EmptyCellCount),
		"total_cavities":         float64(s.TotalCavities),
		"germination_percentage": s.GerminationPercentage,
	}
}

// Round2 rounds v to two decimals from its exact binary value, so halfway
// cases such as 3.125 round to even (3.12).
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
