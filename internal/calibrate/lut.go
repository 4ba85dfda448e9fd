// Package calibrate builds the per-request color correction from sampled
// reference patches: piecewise-linear channel LUTs from the printed gray
// ramp, plus a multiplicative white balance from the ink patches on the
// bean sheet. The vision engine applies the result to the canonical frame.
package calibrate

import (
	"sort"
)

// ChannelLUT maps an observed byte to a corrected byte for one channel.
type ChannelLUT [256]uint8

// LUT holds the three channel correction curves.
type LUT struct {
	R ChannelLUT `json:"r"`
	G ChannelLUT `json:"g"`
	B ChannelLUT `json:"b"`
}

// BuildChannelLUT builds one channel curve from (observed, expected) sample
// pairs. Pairs are sorted by observed value; inputs below the lowest sample
// clamp to its expected output, inputs above the highest clamp likewise, and
// inputs between two samples interpolate linearly by position. A degenerate
// ramp (all observed values equal) collapses to a constant curve.
func BuildChannelLUT(observed []float64, expected []uint8) ChannelLUT {
	var lut ChannelLUT
	if len(observed) == 0 || len(observed) != len(expected) {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	type sample struct {
		x float64
		y float64
	}
	samples := make([]sample, len(observed))
	for i := range observed {
		samples[i] = sample{x: observed[i], y: float64(expected[i])}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].x < samples[j].x })

	first := samples[0]
	last := samples[len(samples)-1]

	// Flat ramp: no usable range, collapse to a constant curve
	if last.x-first.x < 1e-9 {
		for i := range lut {
			lut[i] = uint8(first.y + 0.5)
		}
		return lut
	}

	for i := 0; i < 256; i++ {
		v := float64(i)
		switch {
		case v <= first.x:
			lut[i] = uint8(first.y + 0.5)
		case v >= last.x:
			lut[i] = uint8(last.y + 0.5)
		default:
			// Find the surrounding segment
			j := sort.Search(len(samples), func(k int) bool { return samples[k].x >= v }) - 1
			lo, hi := samples[j], samples[j+1]
			dx := hi.x - lo.x
			if dx <= 0 {
				lut[i] = uint8(lo.y + 0.5)
				continue
			}
			t := (v - lo.x) / dx
			lut[i] = uint8(lo.y + t*(hi.y-lo.y) + 0.5)
		}
	}
	return lut
}

// Degenerate reports whether the observed samples span no usable range, the
// flat-ramp case. The result is still valid, just low-confidence.
func Degenerate(observed []float64) bool {
	if len(observed) == 0 {
		return true
	}
	lo, hi := observed[0], observed[0]
	for _, v := range observed[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi-lo < 1.0
}
