package calibrate

import (
	"log"

	"beanlog/internal/sheet"
	"beanlog/pkg/colorutil"
)

// NeutralTarget is the gray level the white balance steers the estimated
// CMY-mix neutral towards.
const NeutralTarget = 128.0

// WhiteBalanceFactors are per-channel multipliers applied after the LUT.
// They correct the global tint bias the gray ramp cannot capture for
// non-gray subjects.
type WhiteBalanceFactors struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Calibration is the per-request color correction. Never fails to build; a
// flat gray ramp yields a constant LUT and Degenerate=true, which callers
// treat as reduced-confidence input, not an error.
type Calibration struct {
	LUT          LUT
	WhiteBalance *WhiteBalanceFactors // nil unless the sheet has ink patches
	Degenerate   bool
}

// Build constructs the correction curves from the sampled reference patches:
// grays in sheet ramp order, inks in C, M, Y, K order (empty for revisions
// without an ink row).
func Build(grays, inks []colorutil.RGB, g sheet.Geometry) Calibration {
	obsR := make([]float64, len(grays))
	obsG := make([]float64, len(grays))
	obsB := make([]float64, len(grays))
	for i, c := range grays {
		obsR[i] = c.R
		obsG[i] = c.G
		obsB[i] = c.B
	}

	cal := Calibration{
		LUT: LUT{
			R: BuildChannelLUT(obsR, g.ExpectedGrayLevels),
			G: BuildChannelLUT(obsG, g.ExpectedGrayLevels),
			B: BuildChannelLUT(obsB, g.ExpectedGrayLevels),
		},
		Degenerate: Degenerate(obsR) || Degenerate(obsG) || Degenerate(obsB),
	}
	if cal.Degenerate {
		log.Printf("calibrate: flat gray ramp, correction collapsed to a constant")
	}

	if g.HasInkPatches() && len(inks) >= 3 {
		cal.WhiteBalance = whiteBalanceFromInks(inks)
	}

	return cal
}

// whiteBalanceFromInks estimates a neutral gray per channel from the average
// of the cyan, magenta and yellow patches (their ideal mix is neutral) and
// derives the multiplier that moves it onto NeutralTarget.
func whiteBalanceFromInks(inks []colorutil.RGB) *WhiteBalanceFactors {
	var neutral colorutil.RGB
	for _, c := range inks[:3] {
		neutral.R += c.R / 3
		neutral.G += c.G / 3
		neutral.B += c.B / 3
	}

	factor := func(observed float64) float64 {
		if observed <= 0 {
			return 1.0
		}
		return NeutralTarget / observed
	}

	return &WhiteBalanceFactors{
		R: factor(neutral.R),
		G: factor(neutral.G),
		B: factor(neutral.B),
	}
}
