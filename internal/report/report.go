// Package report renders an analysis result as a standalone HTML page with
// go-echarts charts: the calibration LUT curves and the selectable size
// distribution.
package report

import (
	"fmt"
	"io"

	"beanlog/internal/aggregate"
	"beanlog/internal/pipeline"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Render writes the full report page for one result. The distribution uses
// the given metric and weighting; charts with no data are skipped rather
// than rendered empty.
func Render(w io.Writer, res *pipeline.Result, metric aggregate.Metric, weighting aggregate.Weighting) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Analysis report (%s)", res.Mode)

	dist, err := res.Distribution(metric, weighting)
	if err != nil {
		return fmt.Errorf("build distribution: %w", err)
	}
	if dist.HasData {
		page.AddCharts(distributionChart(dist, res.Summary))
	}
	page.AddCharts(lutChart(res))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// distributionChart builds the weighted size-distribution bar chart.
func distributionChart(dist aggregate.Distribution, sum aggregate.Summary) *charts.Bar {
	x := make([]string, len(dist.Bins))
	y := make([]opts.BarData, len(dist.Bins))
	for i, b := range dist.Bins {
		x[i] = fmt.Sprintf("%.2f", (b.LowValue+b.HighValue)/2)
		y[i] = opts.BarData{Value: b.Weight}
	}

	subtitle := fmt.Sprintf("n=%d mean=%.2fmm stddev=%.2fmm mode=%.2fmm",
		sum.Count, sum.MeanMm, sum.StdDevMm, sum.ModeMm)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Size distribution (%s, %s-weighted)", dist.Metric, dist.Weighting),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: axisName(dist.Metric), NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fraction", NameLocation: "middle", NameGap: 40}),
	)
	bar.SetXAxis(x).AddSeries(string(dist.Weighting), y)
	return bar
}

// lutChart plots the three per-channel correction curves so a bad ramp read
// is visible as a kinked or flat line.
func lutChart(res *pipeline.Result) *charts.Line {
	x := make([]string, 256)
	r := make([]opts.LineData, 256)
	g := make([]opts.LineData, 256)
	b := make([]opts.LineData, 256)
	for i := 0; i < 256; i++ {
		x[i] = fmt.Sprintf("%d", i)
		r[i] = opts.LineData{Value: res.LUT.R[i]}
		g[i] = opts.LineData{Value: res.LUT.G[i]}
		b[i] = opts.LineData{Value: res.LUT.B[i]}
	}

	subtitle := "per-channel gray-ramp correction"
	if res.DegenerateCalibration {
		subtitle = "DEGENERATE calibration: ramp had no usable contrast"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Calibration LUT", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "observed", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "corrected", NameLocation: "middle", NameGap: 40, Max: 255}),
	)
	line.SetXAxis(x).
		AddSeries("red", r, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"})).
		AddSeries("green", g, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#4caf50"})).
		AddSeries("blue", b, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2196f3"}))
	return line
}

func axisName(m aggregate.Metric) string {
	switch m {
	case aggregate.MetricSurface:
		return "mm²"
	case aggregate.MetricVolume:
		return "mm³"
	default:
		return "mm"
	}
}
