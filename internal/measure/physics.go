package measure

import (
	"math"
)

// EllipseSurfaceMm2 returns the projected area of the fitted ellipse.
func EllipseSurfaceMm2(majorMM, minorMM float64) float64 {
	return math.Pi / 4 * majorMM * minorMM
}

// EllipsoidVolumeMm3 models the particle as a spheroid with the minor axis
// for both transverse dimensions.
func EllipsoidVolumeMm3(majorMM, minorMM float64) float64 {
	return math.Pi / 6 * majorMM * minorMM * minorMM
}

// AttainableVolumeMm3 estimates the portion of a particle's volume within
// penetration depth of its surface. The particle is reduced to a sphere of
// equal volume; once that sphere's radius exceeds the depth, the inner
// unreachable core is subtracted.
func AttainableVolumeMm3(volumeMM3, depthMM float64) float64 {
	if volumeMM3 <= 0 {
		return 0
	}
	radius := math.Cbrt(3 * volumeMM3 / (4 * math.Pi))
	if radius <= depthMM {
		return volumeMM3
	}
	core := radius - depthMM
	return volumeMM3 - 4.0/3.0*math.Pi*core*core*core
}

// ExtractionYieldProxy is a saturating function of particle surface area:
// yield rises with surface against the reference rate constant and is
// capped at the ceiling percentage.
func ExtractionYieldProxy(surfaceMM2, rateConstant, capPct float64) float64 {
	if surfaceMM2 <= 0 || rateConstant <= 0 {
		return 0
	}
	yield := capPct * (1 - math.Exp(-surfaceMM2/rateConstant))
	if yield > capPct {
		yield = capPct
	}
	return yield
}
