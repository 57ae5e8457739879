package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"seedcounter/internal/model"
)

func TestResultInfo_MarshalJSON(t *testing.T) {
	info := NewResultInfo(model.Result{
		ID:                    3,
		Filename:              "result_abc.jpg",
		Thumbnail:             "thumb_abc.jpg",
		SeedlingCount:         45,
		EmptyCellCount:        5,
		TotalCavities:         50,
		GerminationPercentage: 90,
		CreatedAt:             time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
	})

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	jsonStr := string(data)

	// Check date format (DD-MM-YYYY)
	if !strings.Contains(jsonStr, `"date":"15-06-2025"`) {
		t.Errorf("Expected date format DD-MM-YYYY, got: %s", jsonStr)
	}

	// Check time format (HH:MM)
	if !strings.Contains(jsonStr, `"timeOfDay":"14:30"`) {
		t.Errorf("Expected time format HH:MM, got: %s", jsonStr)
	}

	if !strings.Contains(jsonStr, `"imageUrl":"/results/result_abc.jpg"`) ||
		!strings.Contains(jsonStr, `"thumbnailUrl":"/thumbnails/thumb_abc.jpg"`) {
		t.Errorf("Expected public urls, got: %s", jsonStr)
	}
}

func TestNewResultInfo_NoThumbnail(t *testing.T) {
	info := NewResultInfo(model.Result{Filename: "result_x.jpg"})
	if info.ThumbnailURL != "" {
		t.Errorf("Expected empty thumbnail url, got %q", info.ThumbnailURL)
	}
}

func TestProcessResponse_Keys(t *testing.T) {
	data, err := json.Marshal(ProcessResponse{SeedlingCount: 1, TotalCavities: 2, GerminationPercentage: 50})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var body map[string]interface{}
	json.Unmarshal(data, &body)
	for _, key := range []string{"seedling_count", "empty_cell_count", "total_cavities", "germination_percentage", "output_image_filename", "output_image_url"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Missing key %q in %s", key, data)
		}
	}
	if _, ok := body["thumbnail_url"]; ok {
		t.Errorf("Empty thumbnail_url should be omitted: %s", data)
	}
}
