package opencv

import (
	"fmt"
	"image"
	"log"

	"beanlog/internal/rectify"
	"beanlog/internal/sheet"
	"beanlog/internal/vision"
	"beanlog/pkg/geometry"

	"gocv.io/x/gocv"
)

// maxSourceSide caps the longest side of the source image before warping.
// Phone photos run to 8000px and the warp only needs enough resolution to
// feed the fixed canonical frame; area-averaging the source first bounds
// peak memory without affecting unit correctness.
const maxSourceSide = 4096

// Rectify implements vision.Engine: resample the source frame into the
// sheet's canonical frame, mapping the detected corner quad onto the full
// frame.
func (e *Engine) Rectify(srcFrame vision.Frame, corners geometry.Quad, g sheet.Geometry) (vision.Frame, error) {
	src := unwrap(srcFrame)
	width, height := g.CanonicalSize()

	work := src
	longest := src.Cols()
	if src.Rows() > longest {
		longest = src.Rows()
	}
	if longest > maxSourceSide {
		factor := float64(maxSourceSide) / float64(longest)
		down := gocv.NewMat()
		gocv.Resize(src, &down, image.Point{}, factor, factor, gocv.InterpolationArea)
		defer down.Close()
		log.Printf("rectify: downsampled %dx%d source by %.3f", src.Cols(), src.Rows(), factor)

		work = down
		corners = geometry.Quad{
			TL: corners.TL.Scale(factor),
			TR: corners.TR.Scale(factor),
			BR: corners.BR.Scale(factor),
			BL: corners.BL.Scale(factor),
		}
	}

	h, err := rectify.Compute(corners, float64(width), float64(height))
	if err != nil {
		return nil, fmt.Errorf("homography: %w", err)
	}

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.SetDoubleAt(row, col, h.M[row][col])
		}
	}

	warped := gocv.NewMat()
	gocv.WarpPerspective(work, &warped, m, image.Point{X: width, Y: height})
	return wrap(warped), nil
}
