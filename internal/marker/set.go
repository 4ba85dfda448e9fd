// Package marker models the four sheet-corner fiducials: role assignment
// for detected candidates and sanity checks on the resulting quadrilateral.
// The detection tiers themselves run inside the vision engine.
package marker

import (
	"errors"
	"fmt"

	"beanlog/internal/sheet"
	"beanlog/pkg/geometry"
)

var (
	// ErrInsufficientMarkers means fewer than four valid fiducials were
	// found after both detection tiers.
	ErrInsufficientMarkers = errors.New("insufficient markers")

	// ErrInvalidGeometry means four candidates were found but their
	// quadrilateral fails the size or aspect sanity checks.
	ErrInvalidGeometry = errors.New("invalid marker geometry")
)

// MinCoverageFrac is the minimum fraction of the source image width and
// height the marker quadrilateral must span. Smaller quads are partial or
// spurious detections.
const MinCoverageFrac = 0.15

// MaxAspectDeviation is the allowed relative deviation of the detected
// quad's bounding-box aspect from the sheet's physical aspect.
const MaxAspectDeviation = 0.60

// Set holds the four role-assigned corner points in source-pixel space.
type Set struct {
	TopLeft     geometry.Point2D
	TopRight    geometry.Point2D
	BottomRight geometry.Point2D
	BottomLeft  geometry.Point2D
}

// Quad returns the corners as an ordered quadrilateral.
func (s Set) Quad() geometry.Quad {
	return geometry.Quad{TL: s.TopLeft, TR: s.TopRight, BR: s.BottomRight, BL: s.BottomLeft}
}

// Validate rejects marker sets whose quadrilateral cannot plausibly be the
// sheet: bounding box under MinCoverageFrac of the image in either
// dimension, or aspect ratio further than MaxAspectDeviation from the
// sheet's physical aspect.
func (s Set) Validate(g sheet.Geometry, imgWidth, imgHeight int) error {
	box := s.Quad().BoundingBox()

	if box.Width < float64(imgWidth)*MinCoverageFrac ||
		box.Height < float64(imgHeight)*MinCoverageFrac {
		return fmt.Errorf("%w: markers span %.0fx%.0fpx of a %dx%d image",
			ErrInvalidGeometry, box.Width, box.Height, imgWidth, imgHeight)
	}

	aspect := box.AspectRatio()
	want := g.AspectRatio()
	if aspect < want*(1-MaxAspectDeviation) || aspect > want*(1+MaxAspectDeviation) {
		return fmt.Errorf("%w: quad aspect %.2f deviates too far from sheet aspect %.2f",
			ErrInvalidGeometry, aspect, want)
	}

	return nil
}

// AssignRoles orders at least four centroids into corner roles: sort by
// vertical position to split top and bottom halves, then by horizontal
// position within each half.
func AssignRoles(centroids []geometry.Point2D) (Set, error) {
	if len(centroids) < 4 {
		return Set{}, fmt.Errorf("%w: found only %d markers, need 4",
			ErrInsufficientMarkers, len(centroids))
	}

	pts := make([]geometry.Point2D, len(centroids))
	copy(pts, centroids)

	// Sort by Y to separate top and bottom pairs
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if pts[j].Y < pts[i].Y {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
	}

	top := pts[:2]
	bottom := pts[len(pts)-2:]

	if top[0].X > top[1].X {
		top[0], top[1] = top[1], top[0]
	}
	if bottom[0].X > bottom[1].X {
		bottom[0], bottom[1] = bottom[1], bottom[0]
	}

	return Set{
		TopLeft:     top[0],
		TopRight:    top[1],
		BottomRight: bottom[1],
		BottomLeft:  bottom[0],
	}, nil
}
