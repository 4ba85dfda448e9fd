// Package sheet defines the physical geometry of the printed calibration
// sheets. Every pipeline stage measures against these constants; the marker
// detector and the color calibrator must agree on the same revision.
package sheet

import (
	"fmt"

	"beanlog/pkg/geometry"
)

// PxPerMM is the canonical pixel scale. The rectified frame is always
// WidthMM*PxPerMM x HeightMM*PxPerMM regardless of the source resolution,
// so downstream measurements are resolution-invariant. Both sheet revisions
// share this constant; unit drift between modes is a defect.
const PxPerMM = 6.0

// MarkerRole identifies which sheet corner a fiducial belongs to.
// The role values match the printed ArUco ids.
type MarkerRole int

const (
	RoleTopLeft MarkerRole = iota
	RoleTopRight
	RoleBottomRight
	RoleBottomLeft
)

func (r MarkerRole) String() string {
	switch r {
	case RoleTopLeft:
		return "top-left"
	case RoleTopRight:
		return "top-right"
	case RoleBottomRight:
		return "bottom-right"
	case RoleBottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// Geometry holds the immutable physical constants of one sheet revision.
// All coordinates are millimetres in sheet space, origin at the top-left
// outer marker corner.
type Geometry struct {
	Name     string
	WidthMM  float64
	HeightMM float64

	MarkerSizeMM float64

	// Gray reference ramp used to build the per-channel correction LUTs.
	GrayPatchYMM       float64
	GrayPatchXsMM      []float64
	ExpectedGrayLevels []uint8
	GraySampleRadiusMM float64

	// Ink (CMYK) reference patches used for white balance. Empty on the
	// grind revision, which has no non-gray subject to correct.
	InkPatchYMM       float64
	InkPatchXsMM      []float64
	InkSampleRadiusMM float64

	// Circular measurement stage.
	StageCenterXMM float64
	StageCenterYMM float64
	StageRadiusMM  float64
	StageMarginMM  float64
}

// grayRampXs returns the 11 gray patch centers: 55 + 9.5i mm.
func grayRampXs() []float64 {
	xs := make([]float64, 11)
	for i := range xs {
		xs[i] = 55 + float64(i)*9.5
	}
	return xs
}

// grayRampLevels returns the printed gray levels, 255 down to 20 in 11 steps.
func grayRampLevels() []uint8 {
	levels := make([]uint8, 11)
	for i := range levels {
		levels[i] = uint8(255.0 - float64(i)*(255.0-20.0)/10.0)
	}
	return levels
}

// Grind returns the sheet revision used for ground-particle analysis.
func Grind() Geometry {
	return Geometry{
		Name:               "grind-v1",
		WidthMM:            180,
		HeightMM:           250,
		MarkerSizeMM:       15,
		GrayPatchYMM:       53,
		GrayPatchXsMM:      grayRampXs(),
		ExpectedGrayLevels: grayRampLevels(),
		GraySampleRadiusMM: 1.5,
		StageCenterXMM:     90,
		StageCenterYMM:     125,
		StageRadiusMM:      50,
		StageMarginMM:      2,
	}
}

// Bean returns the sheet revision used for roasted-bean analysis. It adds
// the CMYK ink row that drives the white-balance correction.
func Bean() Geometry {
	return Geometry{
		Name:               "bean-v2",
		WidthMM:            180,
		HeightMM:           250,
		MarkerSizeMM:       15,
		GrayPatchYMM:       45,
		GrayPatchXsMM:      grayRampXs(),
		ExpectedGrayLevels: grayRampLevels(),
		GraySampleRadiusMM: 1.5,
		InkPatchYMM:        30,
		InkPatchXsMM:       []float64{106, 120, 134, 148},
		InkSampleRadiusMM:  3,
		StageCenterXMM:     90,
		StageCenterYMM:     115,
		StageRadiusMM:      50,
		StageMarginMM:      2,
	}
}

// CanonicalSize returns the rectified frame dimensions in pixels.
func (g Geometry) CanonicalSize() (width, height int) {
	return int(g.WidthMM * PxPerMM), int(g.HeightMM * PxPerMM)
}

// AspectRatio returns the physical width/height ratio of the sheet.
func (g Geometry) AspectRatio() float64 {
	return g.WidthMM / g.HeightMM
}

// StageRect returns the stage crop rectangle in canonical pixels, shrunk by
// the safety margin so registration residue at the stage border stays out.
func (g Geometry) StageRect() geometry.Rect {
	r := g.StageRadiusMM - g.StageMarginMM
	return geometry.NewRect(
		(g.StageCenterXMM-r)*PxPerMM,
		(g.StageCenterYMM-r)*PxPerMM,
		2*r*PxPerMM,
		2*r*PxPerMM,
	)
}

// HasInkPatches reports whether this revision carries the white-balance row.
func (g Geometry) HasInkPatches() bool {
	return len(g.InkPatchXsMM) > 0
}

// Validate checks internal consistency of the geometry.
func (g Geometry) Validate() error {
	if g.WidthMM <= 0 || g.HeightMM <= 0 {
		return fmt.Errorf("sheet dimensions must be positive")
	}
	if len(g.GrayPatchXsMM) != len(g.ExpectedGrayLevels) {
		return fmt.Errorf("gray patch count %d does not match expected level count %d",
			len(g.GrayPatchXsMM), len(g.ExpectedGrayLevels))
	}
	if len(g.GrayPatchXsMM) < 2 {
		return fmt.Errorf("need at least 2 gray patches, have %d", len(g.GrayPatchXsMM))
	}
	if g.StageRadiusMM <= g.StageMarginMM {
		return fmt.Errorf("stage margin %.1fmm swallows the stage radius %.1fmm",
			g.StageMarginMM, g.StageRadiusMM)
	}
	for _, x := range g.GrayPatchXsMM {
		if x < 0 || x > g.WidthMM {
			return fmt.Errorf("gray patch x=%.1fmm outside sheet width", x)
		}
	}
	return nil
}
