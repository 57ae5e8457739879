// Package fusion merges the output of the seedling detector and the empty-cell
// detector into a single tray count.
//
// Two detectors look at the same tray photo. A cavity holding a seedling is
// sometimes also reported as an empty cell, so every empty-cell detection that
// overlaps a seedling detection (IoU above the configured threshold) is dropped
// before counting. What remains is summarized as Stats.
//
// # Coordinates
//
// Boxes use pixel coordinates with (0,0) at the top-left corner. X1,Y1 is the
// top-left corner and X2,Y2 the bottom-right corner; a valid box has X1 < X2 and
// Y1 < Y2.
//
// # Errors
//
// Invalid input is reported through the sentinel errors in this package and can
// be matched with errors.Is:
//   - ErrInvalidDetectionSet: a box with non-positive size or a confidence outside [0,1]
//   - ErrInvalidThreshold: an IoU threshold that is NaN or negative
//   - ErrEmptyInputImage: an image with zero area was handed to the renderer
//   - ErrComputation: any other failure while producing a result
//
// A tray with no detections at all is not an error: its germination
// percentage is 0.
//
// All functions are pure and safe for concurrent use.
package fusion
