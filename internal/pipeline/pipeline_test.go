package pipeline

import (
	"image"
	"testing"

	"beanlog/internal/calibrate"
	"beanlog/internal/marker"
	"beanlog/internal/measure"
	"beanlog/internal/outlier"
	"beanlog/internal/sheet"
	"beanlog/internal/vision"
	"beanlog/pkg/colorutil"
	"beanlog/pkg/geometry"
)

// memFrame is an in-memory stand-in for a native buffer; it only tracks
// whether the pipeline released it.
type memFrame struct {
	closed bool
}

func (f *memFrame) Close() { f.closed = true }

// memEngine implements vision.Engine without any native backend. Every
// frame it hands out is recorded so tests can assert the release contract.
type memEngine struct {
	notReady      bool
	detectErr     error
	rectifyPanics bool
	inks          []colorutil.RGB
	particles     []measure.Particle
	frames        []*memFrame
}

func (e *memEngine) newFrame() *memFrame {
	f := &memFrame{}
	e.frames = append(e.frames, f)
	return f
}

func (e *memEngine) Ready() error {
	if e.notReady {
		return vision.ErrNotReady
	}
	return nil
}

func (e *memEngine) LoadImage(img image.Image) (vision.Frame, error) {
	return e.newFrame(), nil
}

func (e *memEngine) LoadRGBA(pix []byte, width, height int) (vision.Frame, error) {
	return e.newFrame(), nil
}

func (e *memEngine) DetectMarkers(src vision.Frame, g sheet.Geometry) (marker.Set, error) {
	if e.detectErr != nil {
		return marker.Set{}, e.detectErr
	}
	return marker.Set{
		TopLeft:     geometry.Point2D{X: 100, Y: 100},
		TopRight:    geometry.Point2D{X: 1000, Y: 110},
		BottomRight: geometry.Point2D{X: 990, Y: 1400},
		BottomLeft:  geometry.Point2D{X: 110, Y: 1390},
	}, nil
}

func (e *memEngine) Rectify(src vision.Frame, corners geometry.Quad, g sheet.Geometry) (vision.Frame, error) {
	if e.rectifyPanics {
		panic("solver did not converge")
	}
	return e.newFrame(), nil
}

func (e *memEngine) SampleGrayRamp(warped vision.Frame, g sheet.Geometry) []colorutil.RGB {
	out := make([]colorutil.RGB, len(g.ExpectedGrayLevels))
	for i, lv := range g.ExpectedGrayLevels {
		v := float64(lv)
		out[i] = colorutil.RGB{R: v, G: v, B: v}
	}
	return out
}

func (e *memEngine) SampleInkPatches(warped vision.Frame, g sheet.Geometry) []colorutil.RGB {
	if !g.HasInkPatches() {
		return nil
	}
	return e.inks
}

func (e *memEngine) Correct(warped vision.Frame, cal calibrate.Calibration) vision.Frame {
	return e.newFrame()
}

func (e *memEngine) ExtractStage(corrected vision.Frame, g sheet.Geometry) vision.Frame {
	return e.newFrame()
}

func (e *memEngine) SegmentGrind(stage vision.Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, vision.Frame) {
	return e.particles, e.newFrame()
}

func (e *memEngine) SegmentBeans(stage vision.Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, vision.Frame) {
	return e.particles, e.newFrame()
}

func (e *memEngine) AnnotatePatches(corrected vision.Frame, g sheet.Geometry) vision.Frame {
	return e.newFrame()
}

func (e *memEngine) ToImage(f vision.Frame) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (e *memEngine) assertAllClosed(t *testing.T, want int) {
	t.Helper()
	if len(e.frames) != want {
		t.Fatalf("engine handed out %d frames, want %d", len(e.frames), want)
	}
	for i, f := range e.frames {
		if !f.closed {
			t.Errorf("frame %d was not released", i)
		}
	}
}

func grindParticles(n int) []measure.Particle {
	p := measure.DefaultParams()
	out := make([]measure.Particle, n)
	for i := range out {
		out[i] = measure.FromEllipse(6, 4, 20, colorutil.RGB{R: 80, G: 60, B: 40}, 1, p)
	}
	return out
}

func grindRequest() Request {
	return Request{
		Image:           image.NewRGBA(image.Rect(0, 0, 1200, 1600)),
		ScaleCorrection: 1,
		Mode:            ModeGrind,
	}
}

func TestProcessRejectsNotReadyEngine(t *testing.T) {
	a := New(&memEngine{notReady: true})
	_, err := a.Process(grindRequest())
	if !IsNotReady(err) {
		t.Fatalf("err = %v, want not-ready", err)
	}
}

func TestProcessRejectsNonpositiveScale(t *testing.T) {
	a := New(&memEngine{})
	req := grindRequest()
	req.ScaleCorrection = 0
	_, err := a.Process(req)
	if !IsProcessingFailure(err) {
		t.Fatalf("err = %v, want processing failure", err)
	}
}

func TestProcessRejectsUnknownMode(t *testing.T) {
	a := New(&memEngine{})
	req := grindRequest()
	req.Mode = "espresso"
	_, err := a.Process(req)
	if !IsProcessingFailure(err) {
		t.Fatalf("err = %v, want processing failure", err)
	}
}

func TestProcessPropagatesMarkerFailureAndReleasesFrames(t *testing.T) {
	e := &memEngine{detectErr: marker.ErrInsufficientMarkers}
	a := New(e)

	_, err := a.Process(grindRequest())
	if !IsInsufficientMarkers(err) {
		t.Fatalf("err = %v, want insufficient markers", err)
	}
	// Only the source frame existed by the time detection failed.
	e.assertAllClosed(t, 1)
}

func TestProcessRecoversEnginePanic(t *testing.T) {
	e := &memEngine{rectifyPanics: true}
	a := New(e)

	result, err := a.Process(grindRequest())
	if !IsProcessingFailure(err) {
		t.Fatalf("err = %v, want processing failure", err)
	}
	if result != nil {
		t.Fatal("panic recovery returned a partial result")
	}
	e.assertAllClosed(t, 1)
}

func TestProcessGrindEndToEnd(t *testing.T) {
	e := &memEngine{particles: grindParticles(8)}
	a := New(e)

	result, err := a.Process(grindRequest())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(result.Particles) != 8 {
		t.Errorf("kept %d particles, want 8", len(result.Particles))
	}
	if !result.Summary.HasData {
		t.Error("summary reports no data")
	}
	// All particles sit in one bin, so the outlier pass falls back to the
	// physical cap.
	if result.OutlierCutoffMm != outlier.FallbackCapMM {
		t.Errorf("cutoff = %g, want %g", result.OutlierCutoffMm, outlier.FallbackCapMM)
	}
	if result.DegenerateCalibration {
		t.Error("identity ramp flagged as degenerate")
	}
	if result.WhiteBalance != nil {
		t.Error("grind sheet has no ink row; white balance must be nil")
	}
	if result.StageImage == nil || result.WarpedImage == nil {
		t.Error("debug images missing")
	}

	// src, warped, corrected, stage, annotated, patch overlay.
	e.assertAllClosed(t, 6)
}

func TestProcessBeanWhiteBalance(t *testing.T) {
	neutral := colorutil.RGB{R: 128, G: 128, B: 128}
	e := &memEngine{
		particles: grindParticles(3),
		inks:      []colorutil.RGB{neutral, neutral, neutral, {R: 40, G: 40, B: 40}},
	}
	a := New(e)

	req := grindRequest()
	req.Mode = ModeBean
	result, err := a.Process(req)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.WhiteBalance == nil {
		t.Fatal("bean sheet with ink samples yielded no white balance")
	}
	if result.WhiteBalance.R != 1 || result.WhiteBalance.G != 1 || result.WhiteBalance.B != 1 {
		t.Errorf("factors = %+v, want unity", *result.WhiteBalance)
	}
	// Bean mode skips the outlier pass.
	if result.OutlierCutoffMm != 0 {
		t.Errorf("cutoff = %g, want 0 in bean mode", result.OutlierCutoffMm)
	}
	e.assertAllClosed(t, 6)
}

func TestProcessLoadsRawPixelBuffer(t *testing.T) {
	e := &memEngine{particles: grindParticles(3)}
	a := New(e)

	req := Request{
		Pix:             make([]byte, 1200*1600*4),
		Width:           1200,
		Height:          1600,
		ScaleCorrection: 1,
		Mode:            ModeGrind,
	}
	if _, err := a.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	e.assertAllClosed(t, 6)
}
