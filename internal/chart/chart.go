// Package chart renders aggregated series and top-category totals with
// go-chart.
package chart

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"math"
	"time"

	"csvdash/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("no data points to plot")

// Format selects the output encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	defaultWidth  = 1024
	defaultHeight = 600
)

// LineSpec describes a time series chart.
type LineSpec struct {
	Title  string
	XLabel string
	YLabel string
	Points []models.Point

	Width, Height int
	Format        Format
}

// BarSpec describes a bar chart of category totals.
type BarSpec struct {
	Title  string
	XLabel string
	YLabel string
	Items  []models.TopItem

	Width, Height int
	Format        Format
}

// Line renders spec.Points as a line over time.
func Line(w io.Writer, spec LineSpec) error {
	if len(spec.Points) == 0 {
		return ErrNoPoints
	}

	xs := make([]time.Time, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i] = p.Date
		ys[i] = p.Value
	}
	style := chart.Style{StrokeWidth: 2, StrokeColor: chart.ColorBlue, DotWidth: 3, DotColor: chart.ColorBlue}
	// go-chart needs two distinct x values
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
		style.DotWidth = 6
	}

	lo, hi := valueRange(ys, false)
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      orDefault(spec.Width, defaultWidth),
		Height:     orDefault(spec.Height, defaultHeight),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 24, Right: 24, Bottom: 24}},
		XAxis: chart.XAxis{
			Name: orText(spec.XLabel, "Date"),
			ValueFormatter: func(v interface{}) string {
				return chart.TimeValueFormatterWithFormat(time.DateOnly)(v)
			},
		},
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: axisValue,
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: spec.YLabel, XValues: xs, YValues: ys, Style: style},
		},
	}
	return ch.Render(renderer(spec.Format), w)
}

// Bar renders one bar per item in the given order.
func Bar(w io.Writer, spec BarSpec) error {
	if len(spec.Items) == 0 {
		return ErrNoPoints
	}

	bars := make([]chart.Value, len(spec.Items))
	ys := make([]float64, len(spec.Items))
	for i, it := range spec.Items {
		bars[i] = chart.Value{Label: it.Name, Value: it.Value}
		ys[i] = it.Value
	}

	width := orDefault(spec.Width, defaultWidth)
	barWidth := width / (2*len(bars) + 1)
	if barWidth > 80 {
		barWidth = 80
	}
	lo, hi := valueRange(ys, true)
	ch := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     orDefault(spec.Height, defaultHeight),
		BarWidth:   max(barWidth, 4),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 24, Right: 24, Bottom: 24}},
		XAxis:      chart.Style{},
		YAxis: chart.YAxis{
			Name:           orText(spec.YLabel, "Value"),
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: axisValue,
		},
		Bars: bars,
	}
	return ch.Render(renderer(spec.Format), w)
}

// Image renders spec as PNG and decodes it for display in a window.
func Image(spec LineSpec) (image.Image, error) {
	spec.Format = PNG
	var buf bytes.Buffer
	if err := Line(&buf, spec); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// FormatValue prints v in plain notation with comma-grouped thousands.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

func axisValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return FormatValue(f)
	}
	return ""
}

// valueRange returns y axis bounds that always have a non-zero span.
// Bar charts keep zero on the axis.
func valueRange(ys []float64, withZero bool) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if withZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	if hi == lo {
		pad := math.Max(math.Abs(hi)*0.1, 1)
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	if withZero && lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

func renderer(f Format) chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
