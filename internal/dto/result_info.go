package dto

import (
	"encoding/json"
	"time"

	"seedcounter/internal/model"
)

// ResultInfo is a stored result as listed in the history.
type ResultInfo struct {
	ID                    int64     `json:"id"`
	SourceName            string    `json:"sourceName"`
	SeedlingCount         int       `json:"seedlingCount"`
	EmptyCellCount        int       `json:"emptyCellCount"`
	TotalCavities         int       `json:"totalCavities"`
	GerminationPercentage float64   `json:"germinationPercentage"`
	ImageURL              string    `json:"imageUrl"`
	ThumbnailURL          string    `json:"thumbnailUrl"`
	Date                  time.Time `json:"date"`
}

// NewResultInfo builds the listing entry for r.
func NewResultInfo(r model.Result) ResultInfo {
	info := ResultInfo{
		ID:                    r.ID,
		SourceName:            r.SourceName,
		SeedlingCount:         r.SeedlingCount,
		EmptyCellCount:        r.EmptyCellCount,
		TotalCavities:         r.TotalCavities,
		GerminationPercentage: r.GerminationPercentage,
		ImageURL:              ResultURL(r.Filename),
		Date:                  r.CreatedAt,
	}
	if r.Thumbnail != "" {
		info.ThumbnailURL = ThumbnailURL(r.Thumbnail)
	}
	return info
}

// MarshalJSON formats the date and time-of-day for display.
func (p ResultInfo) MarshalJSON() ([]byte, error) {
	type Alias ResultInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.Date.Format("15:04"),
		Alias:     (Alias)(p),
	})
}

// ResultURL is the public path of an annotated image.
func ResultURL(filename string) string {
	return "/results/" + filename
}

// ThumbnailURL is the public path of a thumbnail.
func ThumbnailURL(filename string) string {
	return "/thumbnails/" + filename
}
