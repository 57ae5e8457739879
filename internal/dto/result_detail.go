package dto

import "seedcounter/internal/model"

// ResultDetail is one result with every box drawn on its image.
type ResultDetail struct {
	Result     ResultInfo        `json:"result"`
	Detections []model.Detection `json:"detections"`
}

// Summary aggregates the whole history. OverallGerminationPercentage weights
// every cavity equally, MeanGerminationPercentage weights every tray equally.
type Summary struct {
	Results                      int     `json:"results"`
	Seedlings                    int     `json:"seedlings"`
	EmptyCells                   int     `json:"emptyCells"`
	TotalCavities                int     `json:"totalCavities"`
	MeanGerminationPercentage    float64 `json:"meanGerminationPercentage"`
	OverallGerminationPercentage float64 `json:"overallGerminationPercentage"`
}
