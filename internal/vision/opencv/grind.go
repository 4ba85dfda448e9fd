package opencv

import (
	"image"

	"beanlog/internal/measure"
	"beanlog/internal/vision"

	"gocv.io/x/gocv"
)

// Fraction of the stage's shorter side used for the circular interior mask.
// Keeps registration residue in the stage corners out of segmentation.
const grindMaskRadiusFrac = 0.48

// SegmentGrind implements vision.Engine: segment ground particles on the
// corrected stage image and measure each one. Zero surviving contours is a
// valid empty result, not a failure. The returned annotated frame is owned
// by the caller.
func (e *Engine) SegmentGrind(stageFrame vision.Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, vision.Frame) {
	stageImg := unwrap(stageFrame)

	annotated := stageImg.Clone()
	returned := false
	defer func() {
		// Release the clone when a native call panics mid-segmentation
		if !returned {
			annotated.Close()
		}
	}()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(stageImg, &gray, gocv.ColorBGRToGray)

	// Unsharp boost then full-range stretch: fines are barely darker than
	// the paper and vanish under a plain global threshold
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{}, p.UnsharpSigma, p.UnsharpSigma, gocv.BorderDefault)

	sharp := gocv.NewMat()
	defer sharp.Close()
	gocv.AddWeighted(gray, p.UnsharpAmount, blurred, 1.0-p.UnsharpAmount, 0, &sharp)
	gocv.Normalize(sharp, &sharp, 0, 255, gocv.NormMinMax)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(sharp, &bin, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	gocv.MorphologyEx(bin, &bin, gocv.MorphClose, kernel)

	masked := maskCircularInterior(bin, grindMaskRadiusFrac)
	defer masked.Close()

	contours := gocv.FindContours(masked, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var particles []measure.Particle
	for i := 0; i < contours.Size(); i++ {
		cnt := contours.At(i)

		area := gocv.ContourArea(cnt)
		if area < p.GrindMinAreaPx || area > p.GrindMaxAreaPx {
			continue
		}
		if cnt.Size() < 5 {
			continue
		}

		rr := gocv.FitEllipse(cnt)
		particle := measureContour(rr, area, meanColorInContour(stageImg, cnt), scaleCorrection, p)

		// Clump rejection: a blob this long is touching particles
		if particle.MajorAxisMm > p.GrindClumpCapMM {
			continue
		}

		drawEllipse(&annotated, rr)
		particles = append(particles, particle)
	}

	returned = true
	return particles, wrap(annotated)
}
