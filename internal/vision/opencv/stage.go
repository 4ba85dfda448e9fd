package opencv

import (
	"image"

	"beanlog/internal/sheet"
	"beanlog/internal/vision"
)

// ExtractStage implements vision.Engine: return the stage region of the
// canonical frame as an owned copy. The crop rectangle comes straight from
// the sheet geometry (including the safety margin), so once rectification
// succeeded this cannot fail.
func (e *Engine) ExtractStage(correctedFrame vision.Frame, g sheet.Geometry) vision.Frame {
	warped := unwrap(correctedFrame)
	r := g.StageRect()

	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := int(r.X+r.Width), int(r.Y+r.Height)
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

	roi := warped.Region(image.Rect(x0, y0, x1, y1))
	defer roi.Close()
	return wrap(roi.Clone())
}
