package outlier

import (
	"math"
	"testing"

	"beanlog/internal/measure"
)

func particlesWithSizes(sizes ...float64) []measure.Particle {
	out := make([]measure.Particle, len(sizes))
	for i, s := range sizes {
		out[i] = measure.Particle{MajorAxisMm: s}
	}
	return out
}

func TestFilterCutsAboveLastTrustedBin(t *testing.T) {
	// Modal population at 0.25mm, a trusted bin of 3 at 0.85mm and two
	// stragglers at 1.55mm that should be discarded.
	sizes := []float64{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.85, 0.86, 0.84, 1.55, 1.56}
	kept, cutoff := Filter(particlesWithSizes(sizes...))

	if math.Abs(cutoff-0.9) > 1e-9 {
		t.Fatalf("cutoff = %g, want 0.9", cutoff)
	}
	if len(kept) != 9 {
		t.Fatalf("kept %d particles, want 9", len(kept))
	}
	for _, p := range kept {
		if p.MajorAxisMm > cutoff {
			t.Errorf("particle %.2fmm survived above cutoff %.2fmm", p.MajorAxisMm, cutoff)
		}
	}
}

func TestFilterModeInLargestBinKeepsEverything(t *testing.T) {
	// Bin populations [5, 4, 1, 0, 6]: the modal bin is the argmax (the
	// last bin, with 6), so no bin lies to its right, the fixed cap
	// applies, and nothing is discarded.
	var sizes []float64
	for i, n := range []int{5, 4, 1, 0, 6} {
		center := float64(i)*BinWidthMM + BinWidthMM/2
		for j := 0; j < n; j++ {
			sizes = append(sizes, center)
		}
	}

	kept, cutoff := Filter(particlesWithSizes(sizes...))
	if cutoff != FallbackCapMM {
		t.Fatalf("cutoff = %g, want fallback %g", cutoff, FallbackCapMM)
	}
	if len(kept) != 16 {
		t.Fatalf("kept %d particles, want all 16", len(kept))
	}
}

func TestFilterFallbackWhenNoBinRightOfMode(t *testing.T) {
	// Everything sits in the modal bin; no populated bin exists to its
	// right, so the fixed cap applies and nothing is discarded.
	kept, cutoff := Filter(particlesWithSizes(0.42, 0.44, 0.45, 0.41))

	if cutoff != FallbackCapMM {
		t.Fatalf("cutoff = %g, want fallback %g", cutoff, FallbackCapMM)
	}
	if len(kept) != 4 {
		t.Fatalf("kept %d particles, want all 4", len(kept))
	}
}

func TestFilterSparseLargeBinsAreSkipped(t *testing.T) {
	// Bins right of the mode with fewer than MinBinCount members must not
	// set the cutoff.
	sizes := []float64{0.3, 0.3, 0.3, 0.3, 1.2, 2.5}
	kept, cutoff := Filter(particlesWithSizes(sizes...))

	if cutoff != FallbackCapMM {
		t.Fatalf("cutoff = %g, want fallback %g", cutoff, FallbackCapMM)
	}
	// Both artifacts are below the physical cap and survive.
	if len(kept) != 6 {
		t.Fatalf("kept %d particles, want 6", len(kept))
	}
}

func TestFilterEmptyInput(t *testing.T) {
	kept, cutoff := Filter(nil)
	if len(kept) != 0 {
		t.Fatalf("kept %d particles from empty input", len(kept))
	}
	if cutoff != FallbackCapMM {
		t.Fatalf("cutoff = %g, want fallback %g", cutoff, FallbackCapMM)
	}
}
