package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"beanlog/internal/measure"
)

// WriteCSV exports one row per particle, sizes in millimetres. The column
// order is stable so downstream spreadsheets can depend on it.
func WriteCSV(w io.Writer, particles []measure.Particle) error {
	cw := csv.NewWriter(w)
	header := []string{
		"major_axis_mm", "minor_axis_mm", "area_px",
		"surface_mm2", "volume_mm3", "attainable_volume_mm3",
		"extraction_yield_pct", "mean_r", "mean_g", "mean_b", "luma",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, p := range particles {
		row[0] = fmt.Sprintf("%.4f", p.MajorAxisMm)
		row[1] = fmt.Sprintf("%.4f", p.MinorAxisMm)
		row[2] = fmt.Sprintf("%.0f", p.AreaPx)
		row[3] = fmt.Sprintf("%.4f", p.SurfaceMm2)
		row[4] = fmt.Sprintf("%.4f", p.VolumeMm3)
		row[5] = fmt.Sprintf("%.4f", p.AttainableVolumeMm3)
		row[6] = fmt.Sprintf("%.2f", p.ExtractionYieldProxy)
		row[7] = fmt.Sprintf("%.1f", p.MeanColor.R)
		row[8] = fmt.Sprintf("%.1f", p.MeanColor.G)
		row[9] = fmt.Sprintf("%.1f", p.MeanColor.B)
		row[10] = fmt.Sprintf("%.1f", p.Luma)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
