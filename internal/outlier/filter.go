// Package outlier removes sparse large-size artifacts from grind-mode
// particle lists. Paper texture and ink residue occasionally segment as a
// handful of implausibly large "particles" well right of the real size
// distribution.
package outlier

import (
	"log"

	"beanlog/internal/measure"
)

const (
	// BinWidthMM is the histogram resolution of the cutoff search.
	BinWidthMM = 0.1

	// MinBinCount is the population a bin needs to be trusted as real
	// particles rather than artifacts.
	MinBinCount = 3

	// FallbackCapMM bounds particle size when no populated bin exists
	// right of the mode.
	FallbackCapMM = 3.0
)

// Filter bins major-axis sizes into 0.1mm bins, finds the modal bin, and
// scans from the largest bin toward the mode; the first bin holding at
// least MinBinCount particles sets the cutoff at its upper edge. Everything
// above the cutoff is discarded. With no qualifying bin right of the mode
// the fixed physical cap applies. This is a deliberate heuristic carried
// over from field tuning, not a statistical test.
func Filter(particles []measure.Particle) ([]measure.Particle, float64) {
	if len(particles) == 0 {
		return particles, FallbackCapMM
	}

	maxSize := particles[0].MajorAxisMm
	for _, p := range particles[1:] {
		if p.MajorAxisMm > maxSize {
			maxSize = p.MajorAxisMm
		}
	}

	counts := make([]int, int(maxSize/BinWidthMM)+1)
	for _, p := range particles {
		counts[binIndex(p.MajorAxisMm, len(counts))]++
	}

	// The modal bin is the strict argmax (first bin wins ties). When the
	// largest-size bin is itself the mode there is nothing to the right to
	// scan and the fixed cap applies.
	mode := 0
	for b, c := range counts {
		if c > counts[mode] {
			mode = b
		}
	}

	cutoff := FallbackCapMM
	for b := len(counts) - 1; b > mode; b-- {
		if counts[b] >= MinBinCount {
			cutoff = float64(b+1) * BinWidthMM
			break
		}
	}

	kept := particles[:0:0]
	for _, p := range particles {
		if p.MajorAxisMm <= cutoff {
			kept = append(kept, p)
		}
	}

	if removed := len(particles) - len(kept); removed > 0 {
		log.Printf("outlier: discarded %d particles above %.1fmm", removed, cutoff)
	}
	return kept, cutoff
}

func binIndex(sizeMM float64, nbins int) int {
	b := int(sizeMM / BinWidthMM)
	if b < 0 {
		return 0
	}
	if b >= nbins {
		return nbins - 1
	}
	return b
}
