package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"seedcounter/internal/fusion"

	"gocv.io/x/gocv"
)

// RemoteOptions configures a detector backed by an HTTP inference server.
type RemoteOptions struct {
	URL        string
	Classes    []string
	Class      string
	Confidence float64
	Timeout    time.Duration
}

// remoteResponse is the body returned by the inference server.
type remoteResponse struct {
	Detections []remoteDetection `json:"detections"`
}

type remoteDetection struct {
	Box        [4]float64 `json:"box"` // x1, y1, x2, y2 in source pixels
	Confidence float64    `json:"confidence"`
	ClassID    int        `json:"class_id"`
	Label      string     `json:"label"`
}

// RemoteDetector posts JPEG-encoded images to an inference server.
type RemoteDetector struct {
	client  *http.Client
	opts    RemoteOptions
	classID int
}

// NewRemoteDetector creates a detector for the given server.
func NewRemoteDetector(opts RemoteOptions) (*RemoteDetector, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("detector URL is empty")
	}
	classID, err := ClassID(opts.Classes, opts.Class)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &RemoteDetector{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		classID: classID,
	}, nil
}

// IsAlive reports whether the server answers at all.
func (d *RemoteDetector) IsAlive(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.opts.URL, nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Detect encodes img as JPEG and asks the server for detections.
func (d *RemoteDetector) Detect(ctx context.Context, img gocv.Mat) (fusion.DetectionSet, error) {
	if img.Empty() {
		return nil, fusion.ErrEmptyInputImage
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	return d.DetectBytes(ctx, buf.GetBytes(), img.Cols(), img.Rows())
}

// DetectBytes sends an already encoded image of the given size.
func (d *RemoteDetector) DetectBytes(ctx context.Context, data []byte, width, height int) (fusion.DetectionSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.opts.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed remoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}

	return d.filter(parsed.Detections, width, height), nil
}

// filter keeps confident detections of the target class, clipped to the image.
func (d *RemoteDetector) filter(in []remoteDetection, width, height int) fusion.DetectionSet {
	set := fusion.DetectionSet{}
	for _, r := range in {
		if !d.isTarget(r) || r.Confidence < d.opts.Confidence || r.Confidence > 1 {
			continue
		}
		box := fusion.NewBox(
			clamp(r.Box[0], 0, float64(width)),
			clamp(r.Box[1], 0, float64(height)),
			clamp(r.Box[2], 0, float64(width)),
			clamp(r.Box[3], 0, float64(height)),
		)
		if !box.Valid() {
			continue
		}
		set = append(set, fusion.Detection{Box: box, Confidence: r.Confidence, Label: d.opts.Class})
	}
	return set
}

func (d *RemoteDetector) isTarget(r remoteDetection) bool {
	if r.Label != "" {
		return strings.EqualFold(r.Label, d.opts.Class)
	}
	return r.ClassID == d.classID
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (d *RemoteDetector) Close() error {
	return nil
}
