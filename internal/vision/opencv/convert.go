package opencv

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// imageToMat converts a Go image.Image to a BGR gocv.Mat (parallelized).
func imageToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.Mat{}, fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return gocv.Mat{}, fmt.Errorf("empty image %dx%d", width, height)
	}

	// OpenCV default channel order is BGR
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	// Parallelize by horizontal stripes
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= height {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			for y := yStart; y < yEnd; y++ {
				for x := 0; x < width; x++ {
					r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
					mat.SetUCharAt(y, x*3+0, uint8(b>>8))
					mat.SetUCharAt(y, x*3+1, uint8(g>>8))
					mat.SetUCharAt(y, x*3+2, uint8(r>>8))
				}
			}
		}(startY, endY)
	}
	wg.Wait()

	return mat, nil
}

// rgbaToMat wraps a raw width x height x 4 byte-per-channel pixel buffer as
// a BGR gocv.Mat. The buffer layout matches what the capture layer uploads.
func rgbaToMat(pix []byte, width, height int) (gocv.Mat, error) {
	if len(pix) != width*height*4 {
		return gocv.Mat{}, fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%dx4",
			len(pix), width*height*4, width, height)
	}

	rgba, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap pixel buffer: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// matToImage converts a BGR gocv.Mat to a Go image.Image (parallelized).
func matToImage(mat gocv.Mat) (image.Image, error) {
	h := mat.Rows()
	w := mat.Cols()
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("empty mat %dx%d", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stride := img.Stride

	numWorkers := runtime.NumCPU()
	rowsPerWorker := (h + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for worker := 0; worker < numWorkers; worker++ {
		startY := worker * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > h {
			endY = h
		}
		if startY >= h {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			for y := yStart; y < yEnd; y++ {
				rowOffset := y * stride
				for x := 0; x < w; x++ {
					pixOffset := rowOffset + x*4
					img.Pix[pixOffset+0] = mat.GetUCharAt(y, x*3+2) // R
					img.Pix[pixOffset+1] = mat.GetUCharAt(y, x*3+1) // G
					img.Pix[pixOffset+2] = mat.GetUCharAt(y, x*3+0) // B
					img.Pix[pixOffset+3] = 255
				}
			}
		}(startY, endY)
	}
	wg.Wait()

	return img, nil
}
