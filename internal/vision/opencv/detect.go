package opencv

import (
	"fmt"
	"image"
	"log"
	"sort"

	"beanlog/internal/marker"
	"beanlog/internal/sheet"
	"beanlog/internal/vision"
	"beanlog/pkg/geometry"

	"gocv.io/x/gocv"
)

// OpenCV CORNER_REFINE_SUBPIX constant for the ArUco detector.
const cornerRefineSubpix = 1

// Bounding-box aspect window for fallback square candidates.
const (
	fallbackAspectMin = 0.8
	fallbackAspectMax = 1.2
)

// DetectMarkers implements vision.Engine. The primary tier reads the printed
// ArUco identities; if fewer than four ids survive, the dark-square fallback
// runs. The resulting quadrilateral is sanity-checked against the sheet's
// physical aspect before being accepted.
func (e *Engine) DetectMarkers(src vision.Frame, g sheet.Geometry) (marker.Set, error) {
	img := unwrap(src)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	// Light blur strips sensor noise without eroding the marker borders
	gocv.GaussianBlur(gray, &gray, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)

	set, ok := detectAruco(gray)
	if !ok {
		log.Printf("marker: fewer than 4 identified fiducials, running dark-square fallback")
		var err error
		set, err = detectFallback(gray)
		if err != nil {
			return marker.Set{}, err
		}
	}

	if err := set.Validate(g, img.Cols(), img.Rows()); err != nil {
		return marker.Set{}, err
	}
	return set, nil
}

// detectAruco runs the structured-fiducial tier. The sheet prints ArUco
// DICT_4X4_50 ids 0-3, one per corner role. Each marker's corner index
// equal to its id is the marker's geometrically outer corner, so the
// rectified frame extends exactly to the marker edges.
func detectAruco(gray gocv.Mat) (marker.Set, bool) {
	dict := gocv.GetPredefinedDictionary(gocv.ArucoDict4x4_50)

	params := gocv.NewArucoDetectorParameters()
	params.SetAdaptiveThreshWinSizeMin(3)
	params.SetAdaptiveThreshWinSizeMax(23)
	params.SetAdaptiveThreshWinSizeStep(10)
	params.SetCornerRefinementMethod(cornerRefineSubpix)

	detector := gocv.NewArucoDetectorWithParams(dict, params)
	defer detector.Close()

	corners, ids, _ := detector.DetectMarkers(gray)

	found := make(map[sheet.MarkerRole][]gocv.Point2f, 4)
	for i, id := range ids {
		role := sheet.MarkerRole(id)
		if id < 0 || id > 3 || i >= len(corners) || len(corners[i]) != 4 {
			continue
		}
		found[role] = corners[i]
	}

	if len(found) < 4 {
		log.Printf("marker: aruco tier matched %d of 4 roles", len(found))
		return marker.Set{}, false
	}

	outer := func(role sheet.MarkerRole) geometry.Point2D {
		pt := found[role][int(role)]
		return geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}

	return marker.Set{
		TopLeft:     outer(sheet.RoleTopLeft),
		TopRight:    outer(sheet.RoleTopRight),
		BottomRight: outer(sheet.RoleBottomRight),
		BottomLeft:  outer(sheet.RoleBottomLeft),
	}, true
}

// detectFallback is the second detection tier: generic dark squares instead
// of decoded identities. It adaptively thresholds the image, closes small
// print gaps, and keeps 4-vertex convex blobs of roughly square aspect that
// enclose a child contour (a printed marker is hollow; solid blobs are
// beans, smudges, or shadows). Roles are assigned purely by position.
func detectFallback(gray gocv.Mat) (marker.Set, error) {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.AdaptiveThreshold(gray, &bin, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, 21, 7)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	gocv.MorphologyEx(bin, &bin, gocv.MorphClose, kernel)

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(bin, &hierarchy,
		gocv.RetrievalCcomp, gocv.ChainApproxSimple)
	defer contours.Close()

	// A 15mm marker on a sheet at minimum acceptable coverage is still
	// well above this floor.
	minArea := float64(gray.Cols()*gray.Rows()) * 1e-4
	if minArea < 64 {
		minArea = 64
	}

	type candidate struct {
		centroid geometry.Point2D
		area     float64
	}
	var candidates []candidate

	for i := 0; i < contours.Size(); i++ {
		cnt := contours.At(i)
		area := gocv.ContourArea(cnt)
		if area < minArea {
			continue
		}

		// Hollow check: marker squares enclose their pattern
		h := hierarchy.GetVeciAt(0, i)
		if len(h) < 4 || h[2] < 0 {
			continue
		}

		eps := 0.05 * gocv.ArcLength(cnt, true)
		approx := gocv.ApproxPolyDP(cnt, eps, true)
		if approx.Size() != 4 {
			approx.Close()
			continue
		}

		pts := make([]geometry.Point2D, 4)
		for j := 0; j < 4; j++ {
			p := approx.At(j)
			pts[j] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
		}
		approx.Close()

		if !geometry.IsConvex(pts) {
			continue
		}

		aspect := geometry.BoundingBox(pts).AspectRatio()
		if aspect < fallbackAspectMin || aspect > fallbackAspectMax {
			continue
		}

		candidates = append(candidates, candidate{
			centroid: geometry.Centroid(pts),
			area:     area,
		})
	}

	if len(candidates) < 4 {
		return marker.Set{}, fmt.Errorf("%w: found only %d markers, need 4",
			marker.ErrInsufficientMarkers, len(candidates))
	}

	// Prefer the largest squares when extras survive
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	centroids := make([]geometry.Point2D, 4)
	for i := range centroids {
		centroids[i] = candidates[i].centroid
	}

	return marker.AssignRoles(centroids)
}
