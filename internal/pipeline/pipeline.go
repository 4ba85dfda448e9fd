// Package pipeline runs one photo through the full measurement chain:
// marker detection, perspective rectification, color calibration, stage
// extraction, segmentation, outlier filtering and aggregation. All native
// vision work goes through the vision.Engine interface, so the pipeline
// itself carries no native dependency.
package pipeline

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"beanlog/internal/aggregate"
	"beanlog/internal/calibrate"
	"beanlog/internal/measure"
	"beanlog/internal/outlier"
	"beanlog/internal/sheet"
	"beanlog/internal/vision"
)

// Mode selects the subject on the stage and with it the sheet revision and
// segmentation recipe.
type Mode string

const (
	ModeGrind Mode = "grind"
	ModeBean  Mode = "bean"
)

// Request is one analysis job. Either Image or the raw Pix buffer must be
// set; ScaleCorrection is the operator-measured length of the printed 100mm
// reference line divided by 100.
type Request struct {
	Image           image.Image
	Pix             []byte
	Width, Height   int
	ScaleCorrection float64
	Mode            Mode
}

// Result is handed read-only to the presentation layer. Nothing in it
// references native buffers.
type Result struct {
	Mode      Mode               `json:"mode"`
	Particles []measure.Particle `json:"particles"`
	Summary   aggregate.Summary  `json:"summary"`

	// Debug artifacts
	StageImage   image.Image                    `json:"-"`
	WarpedImage  image.Image                    `json:"-"`
	LUT          calibrate.LUT                  `json:"lutCurves"`
	WhiteBalance *calibrate.WhiteBalanceFactors `json:"whiteBalance,omitempty"`

	DegenerateCalibration bool    `json:"degenerateCalibration"`
	OutlierCutoffMm       float64 `json:"outlierCutoffMm,omitempty"`
}

// Distribution re-exposes the selectable histograms over the result's
// particle list.
func (r *Result) Distribution(m aggregate.Metric, w aggregate.Weighting) (aggregate.Distribution, error) {
	return aggregate.Histogram(r.Particles, m, w)
}

// Analyzer owns the vision engine and processes requests one at a time.
// Overlapping callers serialize on the internal mutex; there is no queue
// and no per-request cancellation — a request runs to completion or fails.
type Analyzer struct {
	mu     sync.Mutex
	engine vision.Engine
	params measure.Params
}

// New returns an Analyzer bound to a vision engine with default measurement
// parameters.
func New(engine vision.Engine) *Analyzer {
	return &Analyzer{engine: engine, params: measure.DefaultParams()}
}

// NewWithParams returns an Analyzer with custom measurement parameters.
func NewWithParams(engine vision.Engine, p measure.Params) *Analyzer {
	return &Analyzer{engine: engine, params: p}
}

// Process runs the full pipeline on one request. All intermediate frames
// are released on every exit path; no partial result accompanies an error.
func (a *Analyzer) Process(req Request) (result *Result, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.engine.Ready(); err != nil {
		return nil, err
	}
	if req.ScaleCorrection <= 0 {
		return nil, fmt.Errorf("%w: scale correction %g must be positive", ErrProcessing, req.ScaleCorrection)
	}

	geom, err := geometryForMode(req.Mode)
	if err != nil {
		return nil, err
	}

	// The native backend panics rather than returns errors; map anything
	// that escapes the engine to the processing-failure class
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrProcessing, r)
		}
	}()

	start := time.Now()

	src, err := a.load(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	defer src.Close()

	markers, err := a.engine.DetectMarkers(src, geom)
	if err != nil {
		return nil, err
	}

	warped, err := a.engine.Rectify(src, markers.Quad(), geom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	defer warped.Close()

	grays := a.engine.SampleGrayRamp(warped, geom)
	inks := a.engine.SampleInkPatches(warped, geom)
	cal := calibrate.Build(grays, inks, geom)

	corrected := a.engine.Correct(warped, cal)
	defer corrected.Close()

	stage := a.engine.ExtractStage(corrected, geom)
	defer stage.Close()

	var particles []measure.Particle
	var annotated vision.Frame
	var cutoff float64

	switch req.Mode {
	case ModeGrind:
		particles, annotated = a.engine.SegmentGrind(stage, a.params, req.ScaleCorrection)
		particles, cutoff = outlier.Filter(particles)
	default:
		particles, annotated = a.engine.SegmentBeans(stage, a.params, req.ScaleCorrection)
	}
	defer annotated.Close()

	debugWarped := a.engine.AnnotatePatches(corrected, geom)
	defer debugWarped.Close()

	stageOut, err := a.engine.ToImage(annotated)
	if err != nil {
		return nil, fmt.Errorf("%w: stage image conversion: %v", ErrProcessing, err)
	}
	warpedOut, err := a.engine.ToImage(debugWarped)
	if err != nil {
		return nil, fmt.Errorf("%w: warped image conversion: %v", ErrProcessing, err)
	}

	summary := aggregate.Summarize(particles)
	log.Printf("pipeline: mode=%s particles=%d mean=%.2fmm in %v",
		req.Mode, summary.Count, summary.MeanMm, time.Since(start).Round(time.Millisecond))

	return &Result{
		Mode:                  req.Mode,
		Particles:             particles,
		Summary:               summary,
		StageImage:            stageOut,
		WarpedImage:           warpedOut,
		LUT:                   cal.LUT,
		WhiteBalance:          cal.WhiteBalance,
		DegenerateCalibration: cal.Degenerate,
		OutlierCutoffMm:       cutoff,
	}, nil
}

// geometryForMode picks the sheet revision for the request mode.
func geometryForMode(m Mode) (sheet.Geometry, error) {
	switch m {
	case ModeGrind:
		return sheet.Grind(), nil
	case ModeBean:
		return sheet.Bean(), nil
	default:
		return sheet.Geometry{}, fmt.Errorf("%w: unknown mode %q", ErrProcessing, m)
	}
}

// load materializes the request's pixels as an engine frame.
func (a *Analyzer) load(req Request) (vision.Frame, error) {
	if req.Image != nil {
		return a.engine.LoadImage(req.Image)
	}
	return a.engine.LoadRGBA(req.Pix, req.Width, req.Height)
}
