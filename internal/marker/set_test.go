package marker

import (
	"errors"
	"testing"

	"beanlog/internal/sheet"
	"beanlog/pkg/geometry"
)

func TestAssignRolesOrdersScrambledCentroids(t *testing.T) {
	centroids := []geometry.Point2D{
		{X: 900, Y: 1400}, // bottom-right
		{X: 100, Y: 120},  // top-left
		{X: 110, Y: 1390}, // bottom-left
		{X: 920, Y: 100},  // top-right
	}

	set, err := AssignRoles(centroids)
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}

	if set.TopLeft.X != 100 || set.TopLeft.Y != 120 {
		t.Errorf("top-left = %+v", set.TopLeft)
	}
	if set.TopRight.X != 920 || set.TopRight.Y != 100 {
		t.Errorf("top-right = %+v", set.TopRight)
	}
	if set.BottomRight.X != 900 || set.BottomRight.Y != 1400 {
		t.Errorf("bottom-right = %+v", set.BottomRight)
	}
	if set.BottomLeft.X != 110 || set.BottomLeft.Y != 1390 {
		t.Errorf("bottom-left = %+v", set.BottomLeft)
	}
}

func TestAssignRolesRejectsTooFew(t *testing.T) {
	_, err := AssignRoles([]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}})
	if !errors.Is(err, ErrInsufficientMarkers) {
		t.Fatalf("err = %v, want ErrInsufficientMarkers", err)
	}
}

func sheetShapedSet(w, h float64) Set {
	// Aspect matches the 180x250 sheet.
	return Set{
		TopLeft:     geometry.Point2D{X: 0, Y: 0},
		TopRight:    geometry.Point2D{X: w, Y: 0},
		BottomRight: geometry.Point2D{X: w, Y: h},
		BottomLeft:  geometry.Point2D{X: 0, Y: h},
	}
}

func TestValidateAcceptsPlausibleQuad(t *testing.T) {
	g := sheet.Grind()
	set := sheetShapedSet(720, 1000)
	if err := set.Validate(g, 1200, 1600); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsTinyCoverage(t *testing.T) {
	g := sheet.Grind()
	set := sheetShapedSet(72, 100)
	err := set.Validate(g, 4000, 3000)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestValidateRejectsWrongAspect(t *testing.T) {
	g := sheet.Grind()
	// Wide landscape quad: nothing like the portrait sheet.
	set := Set{
		TopLeft:     geometry.Point2D{X: 0, Y: 0},
		TopRight:    geometry.Point2D{X: 1500, Y: 0},
		BottomRight: geometry.Point2D{X: 1500, Y: 400},
		BottomLeft:  geometry.Point2D{X: 0, Y: 400},
	}
	err := set.Validate(g, 1600, 1200)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestQuadOrdering(t *testing.T) {
	set := sheetShapedSet(10, 20)
	q := set.Quad()
	pts := q.Points()
	if pts[0] != set.TopLeft || pts[1] != set.TopRight ||
		pts[2] != set.BottomRight || pts[3] != set.BottomLeft {
		t.Error("Quad points not in TL, TR, BR, BL order")
	}
}
