package measure

import (
	"math"
	"testing"
)

func TestEllipseSurface(t *testing.T) {
	got := EllipseSurfaceMm2(2, 1)
	want := math.Pi / 2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("surface = %g, want %g", got, want)
	}
}

func TestEllipsoidVolume(t *testing.T) {
	got := EllipsoidVolumeMm3(2, 1)
	want := math.Pi / 3
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("volume = %g, want %g", got, want)
	}
}

func TestAttainableVolumeSmallParticleIsFullyReachable(t *testing.T) {
	// Sphere of radius 0.1mm has volume ~0.00419mm³; anything at or below
	// the penetration depth yields its entire volume.
	v := 4.0 / 3.0 * math.Pi * math.Pow(0.09, 3)
	if got := AttainableVolumeMm3(v, 0.1); got != v {
		t.Errorf("attainable = %g, want full volume %g", got, v)
	}
}

func TestAttainableVolumeSubtractsCore(t *testing.T) {
	// Equivalent sphere of radius 1mm with 0.1mm depth: the 0.9mm core is
	// unreachable.
	v := 4.0 / 3.0 * math.Pi
	want := v - 4.0/3.0*math.Pi*math.Pow(0.9, 3)
	got := AttainableVolumeMm3(v, 0.1)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("attainable = %g, want %g", got, want)
	}
	if got >= v {
		t.Error("attainable volume must be below total volume for large particles")
	}
}

func TestExtractionYieldProxyCapsAndZeroes(t *testing.T) {
	if got := ExtractionYieldProxy(0, 50, 30); got != 0 {
		t.Errorf("zero surface yield = %g, want 0", got)
	}
	if got := ExtractionYieldProxy(1e9, 50, 30); math.Abs(got-30) > 1e-6 {
		t.Errorf("saturated yield = %g, want cap 30", got)
	}
	mid := ExtractionYieldProxy(50, 50, 30)
	want := 30 * (1 - math.Exp(-1))
	if math.Abs(mid-want) > 1e-9 {
		t.Errorf("yield at rate constant = %g, want %g", mid, want)
	}
}

func TestPxToMMScalesLinearly(t *testing.T) {
	// At nominal scale, one canonical-frame millimetre spans PxPerMM pixels.
	if got := PxToMM(6, 1); math.Abs(got-1) > 1e-12 {
		t.Errorf("PxToMM(6, 1) = %g, want 1", got)
	}
	// Doubling the ruler correction doubles every reported length.
	base := PxToMM(100, 1)
	if got := PxToMM(100, 2); math.Abs(got-2*base) > 1e-12 {
		t.Errorf("PxToMM(100, 2) = %g, want %g", got, 2*base)
	}
}
