package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotX(t *testing.T) {
	p := DefaultPlot
	assert.Equal(t, 50.0, p.X(0, 0))
	assert.Equal(t, 50.0, p.X(0, 1))
	assert.Equal(t, 50.0, p.X(0, 4))
	assert.InDelta(t, 350.0, p.X(1, 4), 1e-9)
	assert.Equal(t, 950.0, p.X(3, 4))
}

func TestPlotY(t *testing.T) {
	p := DefaultPlot
	b := Bounds{Min: 0, Max: 100}

	tests := []struct {
		name  string
		value float64
		b     Bounds
		n     int
		want  float64
	}{
		{name: "empty series on baseline", value: 50, b: b, n: 0, want: 340},
		{name: "gap on baseline", value: 0, b: b, n: 3, want: 340},
		{name: "zero max on baseline", value: 5, b: Bounds{}, n: 3, want: 340},
		{name: "degenerate range snaps to top", value: 40, b: Bounds{Min: 40, Max: 40}, n: 3, want: 25},
		{name: "maximum at top", value: 100, b: b, n: 3, want: 25},
		{name: "midpoint", value: 50, b: b, n: 3, want: 182.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.Y(tt.value, tt.b, tt.n), 1e-9)
		})
	}
}

func TestAxisFit(t *testing.T) {
	tests := []struct {
		name   string
		axis   Axis
		values []float64
		want   Bounds
	}{
		{name: "no measurements falls back", axis: GenerationAxis, values: []float64{0, 0}, want: Bounds{Min: 0, Max: 1000}},
		{name: "empty efficiency falls back", axis: EfficiencyAxis, values: nil, want: Bounds{Min: 0, Max: 100}},
		{name: "zeros ignored and range padded", axis: GenerationAxis, values: []float64{0, 50, 0, 70}, want: Bounds{Min: 48, Max: 72}},
		{name: "minimum clamped at zero", axis: GenerationAxis, values: []float64{1, 101}, want: Bounds{Min: 0, Max: 111}},
		{name: "efficiency capped at 100", axis: EfficiencyAxis, values: []float64{80, 100}, want: Bounds{Min: 78, Max: 100}},
		{name: "single value collapses", axis: GenerationAxis, values: []float64{0, 40}, want: Bounds{Min: 40, Max: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.axis.Fit(tt.values)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
		})
	}
}

func TestLinePathSkipsGaps(t *testing.T) {
	s := NewSeries(DefaultPlot, GenerationAxis, []float64{0, 50, 0, 70})

	points := s.Plot.Points(s.Values, s.Bounds)
	require.Len(t, points, 2)
	assert.InDelta(t, 350.0, points[0].X, 1e-9)
	assert.InDelta(t, 950.0, points[1].X, 1e-9)

	assert.Equal(t, "M 350 313.75 L 950 51.25", s.Line())
	assert.Equal(t, "M 350 313.75 L 950 51.25 L 950 340 L 350 340 Z", s.Area())
}

func TestSingleMeasurementDrawsTick(t *testing.T) {
	s := NewSeries(DefaultPlot, GenerationAxis, []float64{0, 40})

	assert.Equal(t, "M 940 25 L 960 25", s.Line())
	assert.Equal(t, "M 940 25 L 960 25 L 960 340 L 940 340 Z", s.Area())
}

func TestSingleSlotSitsOnLeftAnchor(t *testing.T) {
	s := NewSeries(DefaultPlot, EfficiencyAxis, []float64{87})
	assert.Equal(t, "M 40 25 L 60 25", s.Line())
}

func TestEmptySeriesHasNoPath(t *testing.T) {
	for _, values := range [][]float64{nil, {0, 0, 0}} {
		s := NewSeries(DefaultPlot, GenerationAxis, values)
		assert.Empty(t, s.Line())
		assert.Empty(t, s.Area())
	}
}

func TestTickLabels(t *testing.T) {
	assert.Equal(t,
		[]string{"4.0k", "3.0k", "2.0k", "1.0k", "0"},
		GenerationAxis.TickLabels(Bounds{Min: 0, Max: 4000}, 3))
	assert.Equal(t,
		[]string{"100", "95", "89", "84", "78"},
		EfficiencyAxis.TickLabels(Bounds{Min: 78, Max: 100}, 3))
	assert.Equal(t,
		[]string{"0", "0", "0", "0", "0"},
		GenerationAxis.TickLabels(Bounds{Min: 0, Max: 1000}, 0))
	assert.Equal(t, "1200", EfficiencyAxis.TickLabel(Bounds{Min: 0, Max: 1200}, 0, 1))
}
