// Package measure holds the particle measurement model: fitted-ellipse
// geometry in millimetres, derived mass and extraction proxies, calibrated
// color, and the segmentation tunables the vision engine runs with.
package measure

import (
	"beanlog/pkg/colorutil"
)

// Particle is one measured object on the stage. Created once per accepted
// contour and immutable afterwards. MajorAxisMm >= MinorAxisMm always.
type Particle struct {
	MajorAxisMm          float64       `json:"majorAxisMm"`
	MinorAxisMm          float64       `json:"minorAxisMm"`
	AreaPx               float64       `json:"areaPx"`
	SurfaceMm2           float64       `json:"surfaceMm2"`
	VolumeMm3            float64       `json:"volumeMm3"`
	AttainableVolumeMm3  float64       `json:"attainableVolumeMm3"`
	ExtractionYieldProxy float64       `json:"extractionYieldProxy"`
	MeanColor            colorutil.RGB `json:"meanColor"`
	Luma                 float64       `json:"luma"`
}
