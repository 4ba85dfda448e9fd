package measure

import (
	"beanlog/internal/sheet"
	"beanlog/pkg/colorutil"
)

// PxToMM converts a canonical-frame pixel length to millimetres. The
// operator's ruler correction rescales the nominal canonical scale; both
// modes go through this single conversion.
func PxToMM(px, scaleCorrection float64) float64 {
	return px / sheet.PxPerMM * scaleCorrection
}

// FromEllipse derives every measured quantity from a fitted ellipse's axes
// in canonical pixels. The axes are reordered so MajorAxisMm >= MinorAxisMm.
func FromEllipse(axis1Px, axis2Px, areaPx float64, mean colorutil.RGB, scaleCorrection float64, p Params) Particle {
	major, minor := axis1Px, axis2Px
	if minor > major {
		major, minor = minor, major
	}

	majorMM := PxToMM(major, scaleCorrection)
	minorMM := PxToMM(minor, scaleCorrection)

	surface := EllipseSurfaceMm2(majorMM, minorMM)
	volume := EllipsoidVolumeMm3(majorMM, minorMM)

	return Particle{
		MajorAxisMm:          majorMM,
		MinorAxisMm:          minorMM,
		AreaPx:               areaPx,
		SurfaceMm2:           surface,
		VolumeMm3:            volume,
		AttainableVolumeMm3:  AttainableVolumeMm3(volume, p.PenetrationDepthMM),
		ExtractionYieldProxy: ExtractionYieldProxy(surface, p.SurfaceRateConstant, p.ExtractionCapPct),
		MeanColor:            mean,
		Luma:                 mean.Luma(),
	}
}
