package opencv

import (
	"beanlog/internal/calibrate"
	"beanlog/internal/vision"

	"gocv.io/x/gocv"
)

// Correct implements vision.Engine: apply the channel LUTs and, when
// present, the white-balance multipliers to a copy of the canonical frame.
func (e *Engine) Correct(warpedFrame vision.Frame, cal calibrate.Calibration) vision.Frame {
	src := unwrap(warpedFrame)

	lutMat := gocv.NewMatWithSize(1, 256, gocv.MatTypeCV8UC3)
	defer lutMat.Close()
	for i := 0; i < 256; i++ {
		lutMat.SetUCharAt(0, i*3+0, cal.LUT.B[i])
		lutMat.SetUCharAt(0, i*3+1, cal.LUT.G[i])
		lutMat.SetUCharAt(0, i*3+2, cal.LUT.R[i])
	}

	corrected := gocv.NewMat()
	gocv.LUT(src, lutMat, &corrected)

	if cal.WhiteBalance == nil {
		return wrap(corrected)
	}

	channels := gocv.Split(corrected)
	factors := []float64{cal.WhiteBalance.B, cal.WhiteBalance.G, cal.WhiteBalance.R}
	for i := range channels {
		if i < len(factors) {
			channels[i].MultiplyFloat(float32(factors[i]))
		}
	}

	balanced := gocv.NewMat()
	gocv.Merge(channels, &balanced)
	for i := range channels {
		channels[i].Close()
	}
	corrected.Close()

	return wrap(balanced)
}
