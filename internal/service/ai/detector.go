package ai

import (
	"context"
	"errors"
	"fmt"

	"seedcounter/internal/config"
	"seedcounter/internal/fusion"
	"seedcounter/internal/logger"

	"gocv.io/x/gocv"
)

var (
	// ErrClassNotFound is returned when the target class is missing from a model's class list.
	ErrClassNotFound = errors.New("class not found in model classes")
	// ErrModelNotLoaded is returned when a detector is used without a usable network.
	ErrModelNotLoaded = errors.New("detection model not loaded")
)

// Detector produces the detections of a single class for one decoded BGR image.
type Detector interface {
	Detect(ctx context.Context, img gocv.Mat) (fusion.DetectionSet, error)
	Close() error
}

// Models is the detector pair used for one tray image.
type Models struct {
	Seedling  Detector
	EmptyCell Detector
}

// LoadModels builds the seedling and empty-cell detectors for the configured backend.
// Each call loads fresh networks, so every worker should call it once.
func LoadModels(cfg *config.Config, logger *logger.Logger) (*Models, error) {
	switch cfg.DetectorBackend {
	case config.BackendHTTP:
		seedling, err := NewRemoteDetector(RemoteOptions{
			URL:        cfg.SeedlingDetectorURL,
			Classes:    cfg.SeedlingModelClasses,
			Class:      cfg.SeedlingClass,
			Confidence: cfg.SeedlingConfidence,
			Timeout:    cfg.DetectorTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("seedling detector: %w", err)
		}
		emptyCell, err := NewRemoteDetector(RemoteOptions{
			URL:        cfg.EmptyCellDetectorURL,
			Classes:    cfg.EmptyCellModelClasses,
			Class:      cfg.EmptyCellClass,
			Confidence: cfg.EmptyCellConfidence,
			Timeout:    cfg.DetectorTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("empty cell detector: %w", err)
		}
		logger.Info("Remote detectors configured: %s, %s", cfg.SeedlingDetectorURL, cfg.EmptyCellDetectorURL)
		return &Models{Seedling: seedling, EmptyCell: emptyCell}, nil

	case config.BackendDNN:
		seedling, err := NewDNNDetector(DNNOptions{
			ModelPath:    cfg.SeedlingModelPath,
			Classes:      cfg.SeedlingModelClasses,
			Class:        cfg.SeedlingClass,
			Confidence:   cfg.SeedlingConfidence,
			NMSThreshold: cfg.NMSThreshold,
			InputSize:    cfg.ModelInputSize,
		})
		if err != nil {
			return nil, fmt.Errorf("seedling detector: %w", err)
		}
		emptyCell, err := NewDNNDetector(DNNOptions{
			ModelPath:    cfg.EmptyCellModelPath,
			Classes:      cfg.EmptyCellModelClasses,
			Class:        cfg.EmptyCellClass,
			Confidence:   cfg.EmptyCellConfidence,
			NMSThreshold: cfg.NMSThreshold,
			InputSize:    cfg.ModelInputSize,
		})
		if err != nil {
			seedling.Close()
			return nil, fmt.Errorf("empty cell detector: %w", err)
		}
		logger.Info("Detection networks initialized: %s, %s", cfg.SeedlingModelPath, cfg.EmptyCellModelPath)
		return &Models{Seedling: seedling, EmptyCell: emptyCell}, nil
	}

	return nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
}

// DetectAll runs both detectors on img.
func (m *Models) DetectAll(ctx context.Context, img gocv.Mat) (seedlings, emptyCells fusion.DetectionSet, err error) {
	seedlings, err = m.Seedling.Detect(ctx, img)
	if err != nil {
		return nil, nil, fmt.Errorf("seedling detection failed: %w", err)
	}
	emptyCells, err = m.EmptyCell.Detect(ctx, img)
	if err != nil {
		return nil, nil, fmt.Errorf("empty cell detection failed: %w", err)
	}
	return seedlings, emptyCells, nil
}

// Alive checks detectors that talk to a remote server. In-process networks are
// always considered alive.
func (m *Models) Alive(ctx context.Context) error {
	names := []string{"seedling", "empty cell"}
	for i, d := range []Detector{m.Seedling, m.EmptyCell} {
		if remote, ok := d.(interface{ IsAlive(context.Context) bool }); ok && !remote.IsAlive(ctx) {
			return fmt.Errorf("%s detector is unreachable", names[i])
		}
	}
	return nil
}

// Close releases both detectors.
func (m *Models) Close() error {
	return errors.Join(m.Seedling.Close(), m.EmptyCell.Close())
}
