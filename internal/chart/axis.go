package chart

import (
	"fmt"
	"math"
)

// Bounds is the value range mapped onto the plot's vertical span.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Range is Max-Min, or 1 when degenerate so callers can divide by it.
func (b Bounds) Range() float64 {
	if r := b.Max - b.Min; r != 0 {
		return r
	}
	return 1
}

// Axis describes how a value series is scaled.
type Axis struct {
	Name string
	// Default is used when a series has no measurements.
	Default Bounds
	// Ceiling caps the padded maximum; zero means uncapped.
	Ceiling float64
	// Abbreviate prints values of 1000 and above as "1.2k".
	Abbreviate bool
}

var (
	GenerationAxis = Axis{Name: "generation", Default: Bounds{Min: 0, Max: 1000}, Abbreviate: true}
	EfficiencyAxis = Axis{Name: "efficiency", Default: Bounds{Min: 0, Max: 100}, Ceiling: 100}
)

// LabelRows is the number of tick labels on a value axis.
const LabelRows = 5

// Fit derives bounds from the series' measurements. Zero samples are gaps
// and do not count. The observed range is padded by 10% each way, the
// minimum never drops below zero and the maximum respects Ceiling.
func (a Axis) Fit(values []float64) Bounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !measured(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return a.Default
	}

	pad := (hi - lo) * 0.1
	b := Bounds{Min: math.Max(0, lo-pad), Max: hi + pad}
	if a.Ceiling > 0 {
		b.Max = math.Min(a.Ceiling, b.Max)
	}
	return b
}

// TickLabel returns the label for row 0 (top) through LabelRows-1 (bottom),
// interpolated linearly from Max down to Min and clamped at zero.
// samples is the length of the plotted series.
func (a Axis) TickLabel(b Bounds, row, samples int) string {
	if samples == 0 || b.Max == 0 {
		return "0"
	}
	value := b.Max - b.Range()*float64(row)/float64(LabelRows-1)
	if value < 0 {
		return "0"
	}
	if a.Abbreviate && value >= 1000 {
		return fmt.Sprintf("%.1fk", value/1000)
	}
	return fmt.Sprintf("%d", int64(math.Round(value)))
}

// TickLabels returns all rows top to bottom.
func (a Axis) TickLabels(b Bounds, samples int) []string {
	labels := make([]string, LabelRows)
	for i := range labels {
		labels[i] = a.TickLabel(b, i, samples)
	}
	return labels
}

// measured reports whether v is a real sample. Zero means "no measurement";
// telemetry is never negative, so anything not above zero is a gap too.
func measured(v float64) bool {
	return v > 0
}
