package opencv

import (
	"image"

	"beanlog/internal/measure"
	"beanlog/internal/sheet"
	"beanlog/internal/vision"

	"gocv.io/x/gocv"
)

// SegmentBeans implements vision.Engine: segment whole roasted beans on the
// corrected stage image and measure size, color and derived quantities for
// each. Zero surviving contours is a valid empty result. The returned
// annotated frame is owned by the caller.
func (e *Engine) SegmentBeans(stageFrame vision.Frame, p measure.Params, scaleCorrection float64) ([]measure.Particle, vision.Frame) {
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

	k := p.BeanBlurKernel
	gocv.GaussianBlur(gray, &gray, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	// Uneven illumination dwarfs the bean/paper contrast; estimate the
	// background with a very wide blur and work on the difference
	background := gocv.NewMat()
	defer background.Close()
	gocv.GaussianBlur(gray, &background, image.Point{}, p.BeanBackgroundSig, p.BeanBackgroundSig, gocv.BorderDefault)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Subtract(background, gray, &diff)
	gocv.Normalize(diff, &diff, 0, 255, gocv.NormMinMax)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(diff, &bin, p.BeanThreshold, 255, gocv.ThresholdBinary)

	// Close fills specular highlights inside beans, the single open pass
	// strips the fine periodic print noise without eating bean outlines
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 5, Y: 5})
	defer kernel.Close()
	gocv.MorphologyExWithParams(bin, &bin, gocv.MorphClose, kernel, 2, gocv.BorderConstant)
	gocv.MorphologyExWithParams(bin, &bin, gocv.MorphOpen, kernel, 1, gocv.BorderConstant)

	masked := maskInteriorRect(bin, int(p.BeanInteriorMarginMM*sheet.PxPerMM))
	defer masked.Close()

	contours := gocv.FindContours(masked, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var particles []measure.Particle
	for i := 0; i < contours.Size(); i++ {
		cnt := contours.At(i)

		area := gocv.ContourArea(cnt)
		if area < p.BeanMinAreaPx {
			continue
		}
		if cnt.Size() < 5 {
			continue
		}

		rr := gocv.FitEllipse(cnt)
		particle := measureContour(rr, area, meanColorInContour(stageImg, cnt), scaleCorrection, p)

		// Elongated shapes are background line artifacts, not beans
		if particle.MinorAxisMm <= 0 ||
			particle.MajorAxisMm/particle.MinorAxisMm > p.BeanMaxElongation {
			continue
		}

		drawEllipse(&annotated, rr)
		particles = append(particles, particle)
	}

	returned = true
	return particles, wrap(annotated)
}
