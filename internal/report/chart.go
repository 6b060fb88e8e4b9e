package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// seriesPalette cycles across chart series.
var seriesPalette = []string{
	"2563eb", // blue
	"dc2626", // red
	"16a34a", // green
	"9333ea", // purple
	"f59e0b", // amber
	"0891b2", // cyan
}

// RenderChart renders a PNG line chart of the given series over the retained
// window. Absent days split a series into separate runs so gaps are never
// drawn as interpolated lines. Returns raw PNG bytes.
func RenderChart(title string, series []Series) ([]byte, error) {
	var (
		chartSeries []chart.Series
		plottable   int
	)

	for i, s := range series {
		color := drawing.ColorFromHex(seriesPalette[i%len(seriesPalette)])

		for runIdx, run := range splitRuns(s.Points) {
			xValues := make([]time.Time, len(run))
			yValues := make([]float64, len(run))
			for j, p := range run {
				ts, err := time.Parse("2006-01-02", p.Date)
				if err != nil {
					return nil, fmt.Errorf("invalid date %q in series %s: %w", p.Date, s.Key, err)
				}
				xValues[j] = ts
				yValues[j] = p.Price
			}

			if len(run) >= 2 {
				plottable++
			}

			name := ""
			if runIdx == 0 {
				name = s.Key
			}

			chartSeries = append(chartSeries, chart.TimeSeries{
				Name: name,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2.0,
					DotColor:    color,
					DotWidth:    2.5,
				},
				XValues: xValues,
				YValues: yValues,
			})
		}
	}

	if plottable == 0 {
		return nil, fmt.Errorf("not enough data points to chart")
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 2")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f¢", f)
				}
				return ""
			},
		},
		Series: chartSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// splitRuns breaks a point sequence into contiguous present runs.
func splitRuns(points []SeriesPoint) [][]SeriesPoint {
	var (
		runs    [][]SeriesPoint
		current []SeriesPoint
	)
	for _, p := range points {
		if !p.Present {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}
