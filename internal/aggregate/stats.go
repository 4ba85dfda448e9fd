// Package aggregate computes the reported statistics over a measured
// particle list. Sizes are weighted by attainable volume so the numbers
// track extractable mass, matching how the trade reports grind results.
package aggregate

import (
	"math"

	"beanlog/internal/measure"

	"gonum.org/v1/gonum/stat"
)

// ModalBinWidthMM is the resolution of the modal-size histogram, finer than
// the outlier filter's bins.
const ModalBinWidthMM = 0.05

// Summary is the headline result for a particle list.
type Summary struct {
	Count    int     `json:"count"`
	MeanMm   float64 `json:"meanMm"`
	StdDevMm float64 `json:"stdDevMm"`
	ModeMm   float64 `json:"modeMm"`
	HasData  bool    `json:"hasData"`
}

// Summarize computes the attainable-volume-weighted mean, standard
// deviation and modal size of the major axes. Zero particles or zero total
// weight yields HasData=false rather than NaN.
func Summarize(particles []measure.Particle) Summary {
	if len(particles) == 0 {
		return Summary{}
	}

	sizes := make([]float64, len(particles))
	weights := make([]float64, len(particles))
	var total float64
	for i, p := range particles {
		sizes[i] = p.MajorAxisMm
		weights[i] = p.AttainableVolumeMm3
		total += p.AttainableVolumeMm3
	}
	if total <= 0 {
		return Summary{Count: len(particles)}
	}

	mean, std := stat.MeanStdDev(sizes, weights)
	if math.IsNaN(std) {
		// Single sample: no spread to estimate
		std = 0
	}

	return Summary{
		Count:    len(particles),
		MeanMm:   mean,
		StdDevMm: std,
		ModeMm:   modalSize(sizes, weights),
		HasData:  true,
	}
}

// modalSize locates the heaviest ModalBinWidthMM bin and returns its center.
func modalSize(sizes, weights []float64) float64 {
	maxSize := sizes[0]
	for _, s := range sizes[1:] {
		if s > maxSize {
			maxSize = s
		}
	}

	bins := make([]float64, int(maxSize/ModalBinWidthMM)+1)
	for i, s := range sizes {
		b := int(s / ModalBinWidthMM)
		if b >= len(bins) {
			b = len(bins) - 1
		}
		bins[b] += weights[i]
	}

	mode := 0
	for b, w := range bins {
		if w > bins[mode] {
			mode = b
		}
	}
	return (float64(mode) + 0.5) * ModalBinWidthMM
}
