package fusion

import "testing"

func cells(n int) DetectionSet {
	set := make(DetectionSet, n)
	for i := range set {
		x := float64(i * 20)
		set[i] = det(x, 0, x+10, 10, 0.9, "cell")
	}
	return set
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name       string
		seedlings  int
		emptyCells int
		percentage float64
	}{
		{"both empty", 0, 0, 0.0},
		{"only seedlings", 7, 0, 100.0},
		{"only empty cells", 0, 4, 0.0},
		{"half", 1, 1, 50.0},
		{"two thirds rounds", 2, 1, 66.67},
		{"one third rounds", 1, 2, 33.33},
		{"full tray", 121, 7, 94.53},
	}

	for _, tt := range tests {
		stats := ComputeStats(cells(tt.seedlings), cells(tt.emptyCells))

		if stats.SeedlingCount != tt.seedlings {
			t.Errorf("%s: SeedlingCount = %d, expected %d", tt.name, stats.SeedlingCount, tt.seedlings)
		}
		if stats.EmptyCellCount != tt.emptyCells {
			t.Errorf("%s: EmptyCellCount = %d, expected %d", tt.name, stats.EmptyCellCount, tt.emptyCells)
		}
		if stats.TotalCavities != stats.SeedlingCount+stats.EmptyCellCount {
			t.Errorf("%s: TotalCavities = %d, expected %d", tt.name, stats.TotalCavities, stats.SeedlingCount+stats.EmptyCellCount)
		}
		if stats.GerminationPercentage != tt.percentage {
			t.Errorf("%s: GerminationPercentage = %v, expected %v", tt.name, stats.GerminationPercentage, tt.percentage)
		}
	}
}

func TestStats_Fields(t *testing.T) {
	stats := Stats{SeedlingCount: 3, EmptyCellCount: 1, TotalCavities: 4, GerminationPercentage: 75}
	fields := stats.Fields()

	expected := map[string]float64{
		"seedling_count":         3,
		"empty_cell_count":       1,
		"total_cavities":         4,
		"germination_percentage": 75,
	}

	if len(fields) != len(expected) {
		t.Fatalf("Expected %d fields, got %d", len(expected), len(fields))
	}
	for k, v := range expected {
		if fields[k] != v {
			t.Errorf("Field %s = %v, expected %v", k, fields[k], v)
		}
	}
}

func TestDetectionSet_Clone(t *testing.T) {
	original := cells(3)
	clone := original.Clone()
	clone[0].Label = "changed"

	if original[0].Label == "changed" {
		t.Error("Clone shares backing array with original")
	}

	if DetectionSet(nil).Clone() != nil {
		t.Error("Clone of nil set should be nil")
	}
}

func TestBox_Rect(t *testing.T) {
	r := NewBox(1.9, 2.2, 10.7, 20.99).Rect()
	if r.Min.X != 1 || r.Min.Y != 2 || r.Max.X != 10 || r.Max.Y != 20 {
		t.Errorf("Unexpected rect %v", r)
	}
}

func TestComputeStats_HalfwayRoundsToEven(t *testing.T) {
	cells := func(n int) DetectionSet {
		set := make(DetectionSet, n)
		for i := range set {
			set[i] = Detection{Box: NewBox(float64(i*10), 0, float64(i*10+5), 5), Confidence: 0.9}
		}
		return set
	}

	stats := ComputeStats(cells(4), cells(124))
	if stats.TotalCavities != 128 || stats.GerminationPercentage != 3.12 {
		t.Errorf("Expected 128 cavities at 3.12%%, got %+v", stats)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{62.5, 62.5},
		{3.125, 3.12},
		{15.625, 15.62},
		{0.375 * 100, 37.5},
		{2.675, 2.67}, // 2.675 is stored just below the midpoint
		{33.3333, 33.33},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expected {
			t.Errorf("Round2(%v) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total int
		expected    float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{7, 7, 100},
		{4, 128, 3.12},
		{20, 128, 15.62},
		{12, 128, 9.38},
		{1, 32, 3.12},
		{5, 32, 15.62},
	}

	for _, tt := range tests {
		if got := Percentage(tt.part, tt.total); got != tt.expected {
			t.Errorf("Percentage(%d, %d) = %v, expected %v", tt.part, tt.total, got, tt.expected)
		}
	}
}
