package aggregate

import (
	"fmt"

	"beanlog/internal/measure"
)

// Metric selects which per-particle quantity a distribution runs over.
type Metric string

const (
	MetricDiameter Metric = "diameter"
	MetricSurface  Metric = "surface"
	MetricVolume   Metric = "volume"
)

// Weighting selects how much each particle contributes to its bin.
type Weighting string

const (
	WeightCount         Weighting = "count"
	WeightMass          Weighting = "mass"
	WeightAvailableMass Weighting = "available-mass"
	WeightSurface       Weighting = "surface"
)

// Bin is one histogram bucket over [LowValue, HighValue).
type Bin struct {
	LowValue  float64 `json:"low"`
	HighValue float64 `json:"high"`
	Weight    float64 `json:"weight"`
}

// Distribution is a selectable weighted histogram. Weights are normalized
// to fractions of the total so distributions with different weightings are
// directly comparable.
type Distribution struct {
	Metric    Metric    `json:"metric"`
	Weighting Weighting `json:"weighting"`
	Bins      []Bin     `json:"bins"`
	HasData   bool      `json:"hasData"`
}

func metricValue(p measure.Particle, m Metric) (float64, error) {
	switch m {
	case MetricDiameter:
		return p.MajorAxisMm, nil
	case MetricSurface:
		return p.SurfaceMm2, nil
	case MetricVolume:
		return p.VolumeMm3, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", m)
	}
}

func particleWeight(p measure.Particle, w Weighting) (float64, error) {
	switch w {
	case WeightCount:
		return 1, nil
	case WeightMass:
		return p.VolumeMm3, nil
	case WeightAvailableMass:
		return p.AttainableVolumeMm3, nil
	case WeightSurface:
		return p.SurfaceMm2, nil
	default:
		return 0, fmt.Errorf("unknown weighting %q", w)
	}
}

// HistogramBins is the bin count for selectable distributions.
const HistogramBins = 40

// Histogram builds the selected distribution. An empty particle list or a
// zero total weight yields HasData=false and no bins.
func Histogram(particles []measure.Particle, m Metric, w Weighting) (Distribution, error) {
	dist := Distribution{Metric: m, Weighting: w}
	if len(particles) == 0 {
		return dist, nil
	}

	maxVal := 0.0
	for _, p := range particles {
		v, err := metricValue(p, m)
		if err != nil {
			return dist, err
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return dist, nil
	}

	width := maxVal / HistogramBins
	bins := make([]Bin, HistogramBins)
	for i := range bins {
		bins[i].LowValue = float64(i) * width
		bins[i].HighValue = float64(i+1) * width
	}

	var total float64
	for _, p := range particles {
		v, _ := metricValue(p, m)
		weight, err := particleWeight(p, w)
		if err != nil {
			return dist, err
		}
		b := int(v / width)
		if b >= HistogramBins {
			b = HistogramBins - 1
		}
		bins[b].Weight += weight
		total += weight
	}
	if total <= 0 {
		return dist, nil
	}

	for i := range bins {
		bins[i].Weight /= total
	}

	dist.Bins = bins
	dist.HasData = true
	return dist, nil
}
