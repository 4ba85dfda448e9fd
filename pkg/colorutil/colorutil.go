// Package colorutil provides shared color utilities for the bean analyzer.
package colorutil

import (
	"image/color"
)

// Common overlay colors used for debug annotation and mask fills.
var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// RGB is a color triple in the 0-255 range.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Luma returns the weighted grayscale brightness of the color using the
// standard Rec. 601 channel weights.
func (c RGB) Luma() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}
