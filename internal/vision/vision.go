// Package vision defines the narrow surface the measurement pipeline uses to
// reach the native vision backend. The pipeline and every measurement package
// depend only on this interface; the gocv-backed implementation lives in the
// opencv subpackage, and an in-memory engine can stand in for it under test.
package vision

import (
	"errors"
	"image"

	"beanlog/internal/calibrate"
	"beanlog/internal/marker"
	"beanlog/internal/measure"
	"beanlog/internal/sheet"
	"beanlog/pkg/colorutil"
	"beanlog/pkg/geometry"
)

// ErrNotReady is returned when a processing request arrives before the
// engine's runtime has been initialized.
var ErrNotReady = errors.New("vision runtime not ready")

// Frame is an opaque handle to an image buffer owned by the engine. Frames
// must be closed by the caller; a closed frame must not be passed back in.
type Frame interface {
	Close()
}

// Engine is the native vision capability set. Methods that take a geometry
// operate in that sheet revision's canonical frame. Engines may panic on
// internal backend failures; the pipeline maps escaped panics to its
// processing-failure class.
type Engine interface {
	// Ready reports whether the engine can accept work, returning
	// ErrNotReady before initialization completes.
	Ready() error

	// LoadImage materializes a decoded Go image as an engine frame.
	LoadImage(img image.Image) (Frame, error)

	// LoadRGBA wraps a raw width x height x 4 byte pixel buffer.
	LoadRGBA(pix []byte, width, height int) (Frame, error)

	// DetectMarkers locates the four sheet fiducials in a source frame.
	DetectMarkers(src Frame, g sheet.Geometry) (marker.Set, error)

	// Rectify resamples the source frame into the sheet's canonical frame,
	// mapping the corner quad onto the full frame.
	Rectify(src Frame, corners geometry.Quad, g sheet.Geometry) (Frame, error)

	// SampleGrayRamp reads the gray reference patches in sheet order.
	SampleGrayRamp(warped Frame, g sheet.Geometry) []colorutil.RGB

	// SampleInkPatches reads the ink patches, or nil for revisions without
	// them.
	SampleInkPatches(warped Frame, g sheet.Geometry) []colorutil.RGB

	// Correct applies a built calibration to the canonical frame.
	Correct(warped Frame, cal calibrate.Calibration) Frame

	// ExtractStage crops the measurement stage out of the corrected frame.
	ExtractStage(corrected Frame, g sheet.Geometry) Frame

	// SegmentGrind segments and measures ground particles on the stage,
	// returning the particles and an annotated copy of the stage.
	SegmentGrind(stage Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, Frame)

	// SegmentBeans segments and measures whole beans on the stage.
	SegmentBeans(stage Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, Frame)

	// AnnotatePatches overlays the reference-patch sample windows on a copy
	// of the corrected frame.
	AnnotatePatches(corrected Frame, g sheet.Geometry) Frame

	// ToImage converts a frame back to a Go image.
	ToImage(f Frame) (image.Image, error)
}
