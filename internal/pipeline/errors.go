package pipeline

import (
	"errors"

	"beanlog/internal/marker"
	"beanlog/internal/vision"
)

// ErrProcessing wraps unexpected failures downstream of marker detection.
var ErrProcessing = errors.New("processing failure")

// Failure classification helpers for callers that branch on the error
// taxonomy rather than the message.

// IsNotReady reports a request that arrived before runtime initialization.
func IsNotReady(err error) bool {
	return errors.Is(err, vision.ErrNotReady)
}

// IsInsufficientMarkers reports fewer than four valid fiducials after both
// detection tiers.
func IsInsufficientMarkers(err error) bool {
	return errors.Is(err, marker.ErrInsufficientMarkers)
}

// IsInvalidGeometry reports a marker quadrilateral that failed the size or
// aspect sanity checks.
func IsInvalidGeometry(err error) bool {
	return errors.Is(err, marker.ErrInvalidGeometry)
}

// IsProcessingFailure reports an unexpected downstream failure.
func IsProcessingFailure(err error) bool {
	return errors.Is(err, ErrProcessing)
}
