// Package chart renders the rolling upload/download chart as a PNG image.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	// DefaultWidth and DefaultHeight are the rendered size in pixels.
	DefaultWidth  = 760
	DefaultHeight = 380

	// DefaultMinCeiling is the lowest Y axis maximum in MB/s.
	DefaultMinCeiling = 10.0
)

var (
	backgroundColor = drawing.ColorFromHex("2b2b2b")
	foregroundColor = drawing.ColorFromHex("ffffff")
	gridColor       = drawing.ColorFromHex("ffffff").WithAlpha(76)
	downloadColor   = drawing.ColorFromHex("00e5ff")
	uploadColor     = drawing.ColorFromHex("ff00ff")
)

// ErrTooFewPoints is returned when a series cannot be drawn as a line.
var ErrTooFewPoints = errors.New("chart needs at least two points per series")

// Options controls the rendered image.
type Options struct {
	Width  int
	Height int
	// MinCeiling is the smallest Y axis maximum in MB/s; busier windows grow it.
	MinCeiling float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.MinCeiling <= 0 {
		o.MinCeiling = DefaultMinCeiling
	}
	return o
}

// Ceiling returns the Y axis maximum for the given series: minCeiling, or the
// peak rounded up to a whole MB/s when traffic exceeds it.
func Ceiling(minCeiling float64, series ...[]float64) float64 {
	peak := 0.0
	for _, s := range series {
		for _, v := range s {
			peak = math.Max(peak, v)
		}
	}
	if peak <= minCeiling {
		return minCeiling
	}
	return math.Ceil(peak)
}

// Render draws upload and download (MB/s, oldest first, equal length) as
// filled lines over a time axis of len(series) seconds and returns PNG bytes.
func Render(upload, download []float64, opts Options) ([]byte, error) {
	if len(upload) < 2 || len(download) < 2 {
		return nil, ErrTooFewPoints
	}
	if len(upload) != len(download) {
		return nil, fmt.Errorf("series length mismatch: upload %d, download %d", len(upload), len(download))
	}
	opts = opts.withDefaults()

	xs := make([]float64, len(download))
	for i := range xs {
		xs[i] = float64(i)
	}

	axisStyle := chart.Style{FontColor: foregroundColor, StrokeColor: foregroundColor}
	gridStyle := chart.Style{StrokeColor: gridColor, StrokeWidth: 1}

	graph := chart.Chart{
		Title:      "Real Time Network Usage",
		TitleStyle: chart.Style{FontColor: foregroundColor},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{
			FillColor: backgroundColor,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: backgroundColor},
		XAxis: chart.XAxis{
			Name:           "Time (s)",
			NameStyle:      axisStyle,
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(len(xs) - 1)},
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           "Speed (MB/s)",
			NameStyle:      axisStyle,
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: Ceiling(opts.MinCeiling, upload, download)},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "DL",
				XValues: xs,
				YValues: download,
				Style: chart.Style{
					StrokeColor: downloadColor,
					StrokeWidth: 2,
					FillColor:   downloadColor.WithAlpha(50),
				},
			},
			chart.ContinuousSeries{
				Name:    "UL",
				XValues: xs,
				YValues: upload,
				Style: chart.Style{
					StrokeColor: uploadColor,
					StrokeWidth: 2,
					FillColor:   uploadColor.WithAlpha(50),
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph, chart.Style{
		FillColor:   backgroundColor,
		FontColor:   foregroundColor,
		StrokeColor: foregroundColor,
	})}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
