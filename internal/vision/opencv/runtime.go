// Package opencv implements the vision engine on gocv. It is the only
// package in the module that touches the native backend; everything above it
// works in terms of the vision interface and plain Go values.
package opencv

import (
	"errors"
	"log"
	"sync"

	"beanlog/internal/vision"

	"gocv.io/x/gocv"
)

// Runtime is the lazily-constructed handle to the native backend. Init is
// idempotent; processing must be gated on Ready. A zero Runtime is valid but
// not ready.
type Runtime struct {
	mu    sync.Mutex
	ready bool
}

// NewRuntime returns an uninitialized runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Init brings the runtime up. Repeated calls are no-ops. The smoke
// conversion exercises the native library once so that a missing or broken
// backend fails here rather than mid-request.
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}

	probe := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
	defer probe.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(probe, &gray, gocv.ColorBGRToGray)

	if gray.Empty() {
		return errors.New("vision runtime probe failed")
	}

	log.Printf("vision runtime ready (OpenCV %s)", gocv.Version())
	r.ready = true
	return nil
}

// Ready reports whether Init has completed.
func (r *Runtime) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// RequireReady returns vision.ErrNotReady if the runtime is not initialized.
func (r *Runtime) RequireReady() error {
	if !r.Ready() {
		return vision.ErrNotReady
	}
	return nil
}
