package geometry

// Quad is a quadrilateral with corners in a fixed order: top-left,
// top-right, bottom-right, bottom-left.
type Quad struct {
	TL, TR, BR, BL Point2D
}

// Points returns the corners in TL, TR, BR, BL order.
func (q Quad) Points() []Point2D {
	return []Point2D{q.TL, q.TR, q.BR, q.BL}
}

// BoundingBox returns the axis-aligned bounding box of the quad.
func (q Quad) BoundingBox() Rect {
	return BoundingBox(q.Points())
}

// IsConvex returns true if the polygon vertices form a convex polygon.
// The polygon is assumed to be simple (non-self-intersecting).
func IsConvex(polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	n := len(polygon)
	var sign int

	for i := 0; i < n; i++ {
		cross := crossProduct(
			polygon[i],
			polygon[(i+1)%n],
			polygon[(i+2)%n],
		)

		if cross != 0 {
			currentSign := 1
			if cross < 0 {
				currentSign = -1
			}

			if sign == 0 {
				sign = currentSign
			} else if currentSign != sign {
				return false
			}
		}
	}

	return true
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
