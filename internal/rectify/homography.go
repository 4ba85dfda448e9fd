// Package rectify maps the detected sheet quadrilateral onto the fixed-size
// canonical frame in which all physical measurements are made.
package rectify

import (
	"fmt"
	"math"

	"beanlog/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 projective transform, row-major.
type Homography struct {
	M [3][3]float64
}

// Apply maps a point through the homography.
func (h Homography) Apply(p geometry.Point2D) geometry.Point2D {
	w := h.M[2][0]*p.X + h.M[2][1]*p.Y + h.M[2][2]
	if math.Abs(w) < 1e-12 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: (h.M[0][0]*p.X + h.M[0][1]*p.Y + h.M[0][2]) / w,
		Y: (h.M[1][0]*p.X + h.M[1][1]*p.Y + h.M[1][2]) / w,
	}
}

// Compute solves the homography that maps the source quad onto the
// axis-aligned rectangle (0,0)-(width,height) with corners in TL, TR, BR,
// BL order. With h33 fixed to 1 the four correspondences give an exact 8x8
// linear system.
func Compute(from geometry.Quad, width, height float64) (Homography, error) {
	if width <= 0 || height <= 0 {
		return Homography{}, fmt.Errorf("target size %gx%g must be positive", width, height)
	}

	src := from.Points()
	dst := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: width, Y: 0},
		{X: width, Y: height},
		{X: 0, Y: height},
	}

	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		// xp = (h11 x + h12 y + h13) / (h31 x + h32 y + 1)
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -x*xp)
		A.Set(i*2, 7, -y*xp)
		b.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -x*yp)
		A.Set(i*2+1, 7, -y*yp)
		b.SetVec(i*2+1, yp)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, b); err != nil {
		return Homography{}, fmt.Errorf("degenerate corner configuration: %w", err)
	}

	return Homography{M: [3][3]float64{
		{params.AtVec(0), params.AtVec(1), params.AtVec(2)},
		{params.AtVec(3), params.AtVec(4), params.AtVec(5)},
		{params.AtVec(6), params.AtVec(7), 1},
	}}, nil
}
