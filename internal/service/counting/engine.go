package counting

import (
	"fmt"

	"seedcounter/internal/fusion"
	"seedcounter/internal/logger"
	"seedcounter/internal/render"

	"gocv.io/x/gocv"
)

// Result is the outcome of one fused count.
type Result struct {
	fusion.Stats
	Seedlings  fusion.DetectionSet
	EmptyCells fusion.DetectionSet // after overlap filtering
	Suppressed []fusion.Suppression
	Annotated  gocv.Mat
}

// Close releases the annotated image.
func (r *Result) Close() error {
	return r.Annotated.Close()
}

// Engine resolves overlaps, computes statistics and renders the annotated tray.
// It holds no per-call state and can be shared between goroutines.
type Engine struct {
	iouThreshold float64
	renderer     *render.Renderer
	logger       *logger.Logger
}

// NewEngine creates an engine using the given IoU suppression threshold.
func NewEngine(iouThreshold float64, renderer *render.Renderer, logger *logger.Logger) *Engine {
	return &Engine{
		iouThreshold: iouThreshold,
		renderer:     renderer,
		logger:       logger,
	}
}

// Summarize computes the statistics without rendering.
func (e *Engine) Summarize(seedlings, emptyCells fusion.DetectionSet) (fusion.Stats, fusion.DetectionSet, error) {
	kept, err := fusion.Resolve(seedlings, emptyCells, e.iouThreshold)
	if err != nil {
		return fusion.Stats{}, nil, err
	}
	return fusion.ComputeStats(seedlings, kept), kept, nil
}

// Process fuses both detection sets and draws them on a copy of img.
// The caller must Close the returned Result.
func (e *Engine) Process(seedlings, emptyCells fusion.DetectionSet, img gocv.Mat) (*Result, error) {
	if img.Empty() {
		return nil, fusion.ErrEmptyInputImage
	}

	kept, suppressed, err := fusion.ResolveDetailed(seedlings, emptyCells, e.iouThreshold)
	if err != nil {
		return nil, err
	}
	stats := fusion.ComputeStats(seedlings, kept)

	annotated, err := e.renderer.Annotate(img, seedlings, kept)
	if err != nil {
		annotated.Close()
		return nil, fmt.Errorf("failed to render tray: %w", err)
	}

	e.logger.Info("Fused count: seedlings=%d empty_cells=%d (suppressed %d) total=%d germination=%.2f%%",
		stats.SeedlingCount, stats.EmptyCellCount, len(suppressed), stats.TotalCavities, stats.GerminationPercentage)

	return &Result{
		Stats:      stats,
		Seedlings:  seedlings.Clone(),
		EmptyCells: kept,
		Suppressed: suppressed,
		Annotated:  annotated,
	}, nil
}
