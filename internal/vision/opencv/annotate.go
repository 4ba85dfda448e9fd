package opencv

import (
	"image"

	"beanlog/internal/sheet"
	"beanlog/internal/vision"
	"beanlog/pkg/colorutil"

	"gocv.io/x/gocv"
)

// AnnotatePatches implements vision.Engine: clone the corrected canonical
// frame and overlay the reference-patch sample windows so a bad registration
// is visible at a glance, red circles on the gray ramp, blue on the ink row.
func (e *Engine) AnnotatePatches(correctedFrame vision.Frame, g sheet.Geometry) vision.Frame {
	corrected := unwrap(correctedFrame)
	vis := corrected.Clone()

	y := int(g.GrayPatchYMM * sheet.PxPerMM)
	r := int(g.GraySampleRadiusMM * sheet.PxPerMM)
	for _, xMM := range g.GrayPatchXsMM {
		gocv.Circle(&vis, image.Point{X: int(xMM * sheet.PxPerMM), Y: y}, r, colorutil.Red, 2)
	}

	if g.HasInkPatches() {
		y = int(g.InkPatchYMM * sheet.PxPerMM)
		r = int(g.InkSampleRadiusMM * sheet.PxPerMM)
		for _, xMM := range g.InkPatchXsMM {
			gocv.Circle(&vis, image.Point{X: int(xMM * sheet.PxPerMM), Y: y}, r, colorutil.Blue, 2)
		}
	}

	return wrap(vis)
}
