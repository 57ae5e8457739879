package ai

import (
	"context"
	"fmt"
	"image"
	"os"

	"seedcounter/internal/fusion"

	"gocv.io/x/gocv"
)

// DNNOptions configures an in-process ONNX detector.
type DNNOptions struct {
	ModelPath    string
	Classes      []string
	Class        string
	Confidence   float64
	NMSThreshold float64
	InputSize    int
}

// DNNDetector runs a YOLOv8 ONNX export through the OpenCV DNN module.
// A gocv.Net is not safe for concurrent use, so each worker owns its own detector.
type DNNDetector struct {
	net     gocv.Net
	opts    DNNOptions
	classID int
}

// NewDNNDetector loads the network and resolves the target class.
func NewDNNDetector(opts DNNOptions) (*DNNDetector, error) {
	classID, err := ClassID(opts.Classes, opts.Class)
	if err != nil {
		return nil, err
	}
	if opts.InputSize <= 0 {
		opts.InputSize = 640
	}

	net, err := initializeNet(opts.ModelPath)
	if err != nil {
		return nil, err
	}

	return &DNNDetector{net: net, opts: opts, classID: classID}, nil
}

// initializeNet loads the ONNX network and sets backend/target preferences.
func initializeNet(modelPath string) (gocv.Net, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return gocv.Net{}, fmt.Errorf("%w: model file not found: %s", ErrModelNotLoaded, modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return gocv.Net{}, fmt.Errorf("%w: failed to load network %s", ErrModelNotLoaded, modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return gocv.Net{}, fmt.Errorf("failed to set preferable backend or target")
	}
	return net, nil
}

// Detect pads img to a square, runs the network and returns the NMS-filtered
// detections of the target class in source pixel coordinates.
func (d *DNNDetector) Detect(ctx context.Context, img gocv.Mat) (fusion.DetectionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Empty() {
		return nil, fusion.ErrEmptyInputImage
	}
	if d.net.Empty() {
		return nil, ErrModelNotLoaded
	}

	width, height := img.Cols(), img.Rows()
	maxDim := max(width, height)

	square := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), maxDim, maxDim, gocv.MatTypeCV8UC3)
	defer square.Close()
	roi := square.Region(image.Rect(0, 0, width, height))
	err := img.CopyTo(&roi)
	roi.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to pad image: %w", err)
	}

	size := d.opts.InputSize
	scale := float32(maxDim) / float32(size)

	blob := gocv.BlobFromImage(square, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	cands, err := decodeYOLO(data, dims[1]-4, dims[2], d.classID, float32(d.opts.Confidence), scale, width, height)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return fusion.DetectionSet{}, nil
	}

	rects, scores := candidateRects(cands)
	indices := gocv.NMSBoxes(rects, scores, float32(d.opts.Confidence), float32(d.opts.NMSThreshold))

	return toDetections(cands, indices, d.opts.Class), nil
}

// Close releases the network.
func (d *DNNDetector) Close() error {
	return d.net.Close()
}
