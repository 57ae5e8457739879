package model

import "time"

// Detection kinds stored alongside each result.
const (
	KindSeedling  = "seedling"
	KindEmptyCell = "empty_cell"
)

// Result represents one processed tray.
type Result struct {
	ID                    int64     `json:"id"`
	Filename              string    `json:"filename"`
	Thumbnail             string    `json:"thumbnail"`
	SourceName            string    `json:"sourceName"`
	SeedlingCount         int       `json:"seedlingCount"`
	EmptyCellCount        int       `json:"emptyCellCount"`
	TotalCavities         int       `json:"totalCavities"`
	GerminationPercentage float64   `json:"germinationPercentage"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Detection represents one box drawn on a result image.
type Detection struct {
	ID         int64   `json:"id"`
	ResultID   int64   `json:"resultId"`
	Kind       string  `json:"kind"`
	Label      string  `json:"label"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
}
