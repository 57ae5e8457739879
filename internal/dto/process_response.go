package dto

// ProcessResponse is returned by the process-image endpoint and broadcast to
// live viewers.
type ProcessResponse struct {
	ID                    int64   `json:"id"`
	SeedlingCount         int     `json:"seedling_count"`
	EmptyCellCount        int     `json:"empty_cell_count"`
	TotalCavities         int     `json:"total_cavities"`
	GerminationPercentage float64 `json:"germination_percentage"`
	OutputImageFilename   string  `json:"output_image_filename"`
	OutputImageURL        string  `json:"output_image_url"`
	ThumbnailURL          string  `json:"thumbnail_url,omitempty"`
}
