package fusion

import "errors"

var (
	// ErrInvalidDetectionSet is returned when a detection has a non-positive box
	// size, non-finite coordinates or a confidence outside [0,1].
	ErrInvalidDetectionSet = errors.New("invalid detection set")

	// ErrInvalidThreshold is returned for an IoU threshold that is NaN or negative.
	ErrInvalidThreshold = errors.New("invalid iou threshold")

	// ErrEmptyInputImage is returned when the source image has zero area.
	ErrEmptyInputImage = errors.New("empty input image")

	// ErrComputation wraps any other failure that prevents producing a result.
	ErrComputation = errors.New("fusion computation failed")
)
