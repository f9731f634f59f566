package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "560px"
	xAxisRotate = 45
	chartTitle  = "Refactorings by type"
	seriesLabel = "Refactorings"
)

// NewChart builds a bar chart of refactorings per type.
func NewChart(r *Report) *charts.Bar {
	counts := r.CountsByType()

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))

	for i, tc := range counts {
		labels[i] = tc.Type
		data[i] = opts.BarData{Value: tc.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: chartTitle,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    chartTitle,
			Subtitle: fmt.Sprintf("%d refactorings in %d commits", r.Summary.Refactorings, r.Summary.Commits),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries(seriesLabel, data)

	return bar
}

// WriteChart renders the chart as a standalone HTML page.
func WriteChart(w io.Writer, r *Report) error {
	if err := NewChart(r).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}
