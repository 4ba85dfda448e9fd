package opencv

import (
	"fmt"
	"image"

	"beanlog/internal/vision"

	"gocv.io/x/gocv"
)

// Engine is the gocv-backed implementation of vision.Engine.
type Engine struct {
	runtime *Runtime
}

// NewEngine returns an engine over an uninitialized runtime.
func NewEngine() *Engine {
	return &Engine{runtime: NewRuntime()}
}

// Init brings the native runtime up. Idempotent.
func (e *Engine) Init() error {
	return e.runtime.Init()
}

// Ready implements vision.Engine.
func (e *Engine) Ready() error {
	return e.runtime.RequireReady()
}

// matFrame owns one gocv.Mat behind the vision.Frame handle.
type matFrame struct {
	mat gocv.Mat
}

func (f *matFrame) Close() {
	f.mat.Close()
}

func wrap(m gocv.Mat) vision.Frame {
	return &matFrame{mat: m}
}

// unwrap recovers the Mat behind a frame. Frames from a different engine are
// a programming error and panic into the pipeline's failure handling.
func unwrap(f vision.Frame) gocv.Mat {
	mf, ok := f.(*matFrame)
	if !ok {
		panic(fmt.Sprintf("frame type %T does not belong to the opencv engine", f))
	}
	return mf.mat
}

// LoadImage implements vision.Engine.
func (e *Engine) LoadImage(img image.Image) (vision.Frame, error) {
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	return wrap(mat), nil
}

// LoadRGBA implements vision.Engine.
func (e *Engine) LoadRGBA(pix []byte, width, height int) (vision.Frame, error) {
	mat, err := rgbaToMat(pix, width, height)
	if err != nil {
		return nil, err
	}
	return wrap(mat), nil
}

// ToImage implements vision.Engine.
func (e *Engine) ToImage(f vision.Frame) (image.Image, error) {
	return matToImage(unwrap(f))
}
