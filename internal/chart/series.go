package chart

import (
	"fmt"
	"strings"
)

// Plot is the pixel frame a series is drawn into. Y grows downwards, so
// Top is the smaller pixel value.
type Plot struct {
	Left   float64
	Width  float64
	Top    float64
	Bottom float64
	// Tick is the half width of the mark drawn for a lone measurement.
	Tick float64
}

// DefaultPlot matches a 1000x380 chart with labels on the left.
var DefaultPlot = Plot{Left: 50, Width: 900, Top: 25, Bottom: 340, Tick: 10}

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// X spreads n slots evenly across the plot width. With fewer than two slots
// every point sits on the left anchor.
func (p Plot) X(index, n int) float64 {
	if n <= 1 {
		return p.Left
	}
	return float64(index)/float64(n-1)*p.Width + p.Left
}

// Y maps value into the vertical span, larger values higher up. Empty
// series, gaps and a zero maximum land on the baseline; a degenerate
// non-zero range snaps to the top row.
func (p Plot) Y(value float64, b Bounds, n int) float64 {
	if n == 0 || !measured(value) || b.Max == 0 {
		return p.Bottom
	}
	if b.Max == b.Min && b.Max > 0 {
		return p.Top
	}
	normalized := (value - b.Min) / b.Range()
	return p.Bottom - normalized*(p.Bottom-p.Top)
}

// Points maps every measured sample, keeping slot order. Gaps are dropped
// but still occupy their horizontal slot.
func (p Plot) Points(values []float64, b Bounds) []Point {
	n := len(values)
	points := make([]Point, 0, n)
	for i, v := range values {
		if !measured(v) {
			continue
		}
		points = append(points, Point{X: p.X(i, n), Y: p.Y(v, b, n)})
	}
	return points
}

// LinePath joins the measured samples with a moveto and lineto commands.
// A lone sample becomes a short horizontal tick.
func (p Plot) LinePath(values []float64, b Bounds) string {
	return p.linePath(p.Points(values, b))
}

func (p Plot) linePath(points []Point) string {
	switch len(points) {
	case 0:
		return ""
	case 1:
		pt := points[0]
		return fmt.Sprintf("M %s %s L %s %s", num(pt.X-p.Tick), num(pt.Y), num(pt.X+p.Tick), num(pt.Y))
	}

	parts := make([]string, len(points))
	for i, pt := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		parts[i] = fmt.Sprintf("%s %s %s", cmd, num(pt.X), num(pt.Y))
	}
	return strings.Join(parts, " ")
}

// AreaPath closes the line down to the baseline so it can be filled. A lone
// sample produces a band under its tick instead of a zero-area shape.
func (p Plot) AreaPath(values []float64, b Bounds) string {
	points := p.Points(values, b)
	line := p.linePath(points)
	if line == "" {
		return ""
	}

	base := num(p.Bottom)
	if len(points) == 1 {
		pt := points[0]
		return fmt.Sprintf("%s L %s %s L %s %s Z", line, num(pt.X+p.Tick), base, num(pt.X-p.Tick), base)
	}
	first, last := points[0], points[len(points)-1]
	return fmt.Sprintf("%s L %s %s L %s %s Z", line, num(last.X), base, num(first.X), base)
}

// Series bundles one value axis with its data and fitted bounds.
type Series struct {
	Plot   Plot
	Axis   Axis
	Values []float64
	Bounds Bounds
}

// NewSeries fits the axis to values.
func NewSeries(plot Plot, axis Axis, values []float64) Series {
	return Series{Plot: plot, Axis: axis, Values: values, Bounds: axis.Fit(values)}
}

func (s Series) Line() string { return s.Plot.LinePath(s.Values, s.Bounds) }

func (s Series) Area() string { return s.Plot.AreaPath(s.Values, s.Bounds) }

func (s Series) Labels() []string { return s.Axis.TickLabels(s.Bounds, len(s.Values)) }
