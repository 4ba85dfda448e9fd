// Command beanlog analyzes one photo of a calibration sheet and writes the
// measurement results: a particle CSV, annotated debug images and an HTML
// report with the size distribution and calibration curves.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"beanlog/internal/aggregate"
	"beanlog/internal/pipeline"
	"beanlog/internal/report"
	"beanlog/internal/version"
	"beanlog/internal/vision/opencv"

	_ "golang.org/x/image/tiff"
)

func main() {
	input := flag.String("i", "", "Path to sheet photo (jpeg, png or tiff)")
	mode := flag.String("mode", "grind", "Analysis mode: grind or bean")
	ruler := flag.Float64("ruler", 100, "Measured length of the printed 100mm line, in mm")
	outDir := flag.String("o", ".", "Output directory")
	metric := flag.String("metric", "diameter", "Distribution metric: diameter, surface or volume")
	weighting := flag.String("weighting", "available-mass", "Distribution weighting: count, mass, available-mass or surface")
	debug := flag.Bool("debug", false, "Write annotated warped and stage images")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *input == "" {
		fmt.Println("Usage: beanlog -i <photo> [-mode grind|bean] [-ruler <mm>] [-o <dir>]")
		os.Exit(1)
	}
	if *ruler <= 0 {
		fmt.Fprintf(os.Stderr, "Ruler length must be positive, got %g\n", *ruler)
		os.Exit(1)
	}

	img, err := loadImage(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *input, err)
		os.Exit(1)
	}

	engine := opencv.NewEngine()
	if err := engine.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Vision runtime init failed: %v\n", err)
		os.Exit(1)
	}

	analyzer := pipeline.New(engine)
	res, err := analyzer.Process(pipeline.Request{
		Image:           img,
		ScaleCorrection: *ruler / 100,
		Mode:            pipeline.Mode(*mode),
	})
	if err != nil {
		switch {
		case pipeline.IsInsufficientMarkers(err):
			fmt.Fprintf(os.Stderr, "Could not find all four corner markers: %v\n", err)
		case pipeline.IsInvalidGeometry(err):
			fmt.Fprintf(os.Stderr, "Marker layout failed sanity checks: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		}
		os.Exit(1)
	}

	sum := res.Summary
	fmt.Printf("=== %s analysis: %s ===\n", res.Mode, filepath.Base(*input))
	if !sum.HasData {
		fmt.Println("No particles found on the stage.")
	} else {
		fmt.Printf("Particles: %d\n", sum.Count)
		fmt.Printf("Mean size: %.2f mm (weighted by attainable volume)\n", sum.MeanMm)
		fmt.Printf("Std dev:   %.2f mm\n", sum.StdDevMm)
		fmt.Printf("Mode:      %.2f mm\n", sum.ModeMm)
	}
	if res.OutlierCutoffMm > 0 {
		fmt.Printf("Outlier cutoff: %.1f mm\n", res.OutlierCutoffMm)
	}
	if res.DegenerateCalibration {
		fmt.Println("Warning: gray ramp had no usable contrast; colors are uncorrected.")
	}

	base := outputBase(*input)

	if err := writeCSV(filepath.Join(*outDir, base+"-particles.csv"), res); err != nil {
		fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeReport(filepath.Join(*outDir, base+"-report.html"), res,
		aggregate.Metric(*metric), aggregate.Weighting(*weighting)); err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		if err := writePNG(filepath.Join(*outDir, base+"-warped.png"), res.WarpedImage); err != nil {
			fmt.Fprintf(os.Stderr, "Debug image failed: %v\n", err)
			os.Exit(1)
		}
		if err := writePNG(filepath.Join(*outDir, base+"-stage.png"), res.StageImage); err != nil {
			fmt.Fprintf(os.Stderr, "Debug image failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Results written to %s\n", *outDir)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// outputBase strips the directory and extension from the input path.
func outputBase(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func writeCSV(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteCSV(f, res.Particles)
}

func writeReport(path string, res *pipeline.Result, m aggregate.Metric, w aggregate.Weighting) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.Render(f, res, m, w)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
