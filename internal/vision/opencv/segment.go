package opencv

import (
	"image"

	"beanlog/internal/measure"
	"beanlog/pkg/colorutil"

	"gocv.io/x/gocv"
)

// measureContour derives a particle from a fitted ellipse. FitEllipse
// reports the axes as whole canonical pixels, so lengths are quantized to
// 1/PxPerMM (about 0.17mm); fine-grind histograms inherit that step.
func measureContour(rr gocv.RotatedRect, areaPx float64, mean colorutil.RGB, scaleCorrection float64, p measure.Params) measure.Particle {
	return measure.FromEllipse(float64(rr.Width), float64(rr.Height), areaPx, mean, scaleCorrection, p)
}

// meanColorInContour averages the corrected stage pixels inside the contour.
func meanColorInContour(img gocv.Mat, cnt gocv.PointVector) colorutil.RGB {
	mask := gocv.NewMatWithSize(img.Rows(), img.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()

	pv := gocv.NewPointsVector()
	defer pv.Close()
	pv.Append(cnt)
	gocv.DrawContours(&mask, pv, 0, colorutil.White, -1)

	m := img.MeanWithMask(mask) // BGR scalar
	return colorutil.RGB{R: m.Val3, G: m.Val2, B: m.Val1}
}

// drawEllipse annotates a fitted ellipse on the debug image.
func drawEllipse(dst *gocv.Mat, rr gocv.RotatedRect) {
	axes := image.Point{X: rr.Width / 2, Y: rr.Height / 2}
	gocv.Ellipse(dst, rr.Center, axes, rr.Angle, 0, 360, colorutil.Green, 2)
}

// maskCircularInterior zeroes everything outside the stage's inscribed
// circle.
func maskCircularInterior(bin gocv.Mat, radiusFrac float64) gocv.Mat {
	h, w := bin.Rows(), bin.Cols()
	short := h
	if w < short {
		short = w
	}

	mask := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.Circle(&mask, image.Point{X: w / 2, Y: h / 2}, int(radiusFrac*float64(short)), colorutil.White, -1)

	out := gocv.NewMat()
	gocv.BitwiseAndWithMask(bin, bin, &out, mask)
	return out
}

// maskInteriorRect zeroes a margin band around the stage edges.
func maskInteriorRect(bin gocv.Mat, marginPx int) gocv.Mat {
	h, w := bin.Rows(), bin.Cols()
	m := marginPx
	if m*2 >= w || m*2 >= h {
		m = 0
	}

	mask := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.Rectangle(&mask, image.Rect(m, m, w-m, h-m), colorutil.White, -1)

	out := gocv.NewMat()
	gocv.BitwiseAndWithMask(bin, bin, &out, mask)
	return out
}
