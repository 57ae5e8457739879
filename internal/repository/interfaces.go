package repository

import (
	"seedcounter/internal/dto"
	"seedcounter/internal/model"
)

// ResultRepository defines the interface for result history operations.
type ResultRepository interface {
	// Create operations
	Insert(res *model.Result) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Result, error)
	GetByFilename(filename string) (*model.Result, error)
	GetAll(filter *dto.ResultFilter) ([]model.Result, error)
	GetTotalCount(filter *dto.ResultFilter) (int, error)
	GetSummary() (*dto.Summary, error)

	// Delete operations
	Delete(id int64) error
}

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	// Create operations
	InsertBatch(detections []model.Detection) error

	// Read operations
	GetByResultID(resultID int64) ([]model.Detection, error)
}
