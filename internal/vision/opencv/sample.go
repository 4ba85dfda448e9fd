package opencv

import (
	"image"

	"beanlog/internal/sheet"
	"beanlog/internal/vision"
	"beanlog/pkg/colorutil"

	"gocv.io/x/gocv"
)

// samplePatch averages a square window around a patch center given in sheet
// millimetres, reading from the canonical frame.
func samplePatch(warped gocv.Mat, xMM, yMM, radiusMM float64) colorutil.RGB {
	cx := int(xMM * sheet.PxPerMM)
	cy := int(yMM * sheet.PxPerMM)
	r := int(radiusMM * sheet.PxPerMM)
	if r < 1 {
		r = 1
	}

	x0, y0 := cx-r, cy-r
	x1, y1 := cx+r, cy+r
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > warped.Cols() {
		x1 = warped.Cols()
	}
	if y1 > warped.Rows() {
		y1 = warped.Rows()
	}
	if x1 <= x0 || y1 <= y0 {
		return colorutil.RGB{}
	}

	region := warped.Region(image.Rect(x0, y0, x1, y1))
	defer region.Close()

	m := region.Mean() // BGR scalar
	return colorutil.RGB{R: m.Val3, G: m.Val2, B: m.Val1}
}

// SampleGrayRamp implements vision.Engine: read the gray reference patches
// from the canonical frame in sheet order, brightest first.
func (e *Engine) SampleGrayRamp(warpedFrame vision.Frame, g sheet.Geometry) []colorutil.RGB {
	warped := unwrap(warpedFrame)
	out := make([]colorutil.RGB, 0, len(g.GrayPatchXsMM))
	for _, x := range g.GrayPatchXsMM {
		out = append(out, samplePatch(warped, x, g.GrayPatchYMM, g.GraySampleRadiusMM))
	}
	return out
}

// SampleInkPatches implements vision.Engine: read the CMYK white-balance
// patches, or nil when the sheet revision has none.
func (e *Engine) SampleInkPatches(warpedFrame vision.Frame, g sheet.Geometry) []colorutil.RGB {
	if !g.HasInkPatches() {
		return nil
	}
	warped := unwrap(warpedFrame)
	out := make([]colorutil.RGB, 0, len(g.InkPatchXsMM))
	for _, x := range g.InkPatchXsMM {
		out = append(out, samplePatch(warped, x, g.InkPatchYMM, g.InkSampleRadiusMM))
	}
	return out
}
