// Package chart turns fleet numbers into SVG path data. Everything here is
// a pure function of its arguments and safe to call from concurrent renders.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category is one of the four mutually exclusive severity buckets.
type Category int

const (
	Healthy Category = iota
	Warning
	Critical
	Offline
)

// Categories is the fixed clockwise drawing order.
var Categories = [...]Category{Healthy, Warning, Critical, Offline}

// EmptyCategory draws the neutral full ring when there is nothing to count.
const EmptyCategory = Offline

func (c Category) String() string {
	switch c {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	case Offline:
		return "offline"
	}
	return "unknown"
}

// Color is the fill used for the category's wedge and legend.
func (c Category) Color() string {
	switch c {
	case Healthy:
		return "#10b981"
	case Warning:
		return "#f59e0b"
	case Critical:
		return "#ef4444"
	case Offline:
		return "#6b7280"
	}
	return "#9e9e9e"
}

// ParseCategory maps a bucket name back to its Category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.String() == strings.ToLower(name) {
			return c, true
		}
	}
	return 0, false
}

// Counts holds the number of turbines in each bucket.
type Counts struct {
	Healthy  int `json:"healthy"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Offline  int `json:"offline"`
}

// Of returns the count for a single category.
func (c Counts) Of(cat Category) int {
	switch cat {
	case Healthy:
		return c.Healthy
	case Warning:
		return c.Warning
	case Critical:
		return c.Critical
	case Offline:
		return c.Offline
	}
	return 0
}

// Sum adds all four buckets.
func (c Counts) Sum() int {
	return c.Healthy + c.Warning + c.Critical + c.Offline
}

// Donut is the ring geometry. Inner/Outer stays at 0.7 when scaled.
type Donut struct {
	CX, CY float64
	Outer  float64
	Inner  float64
}

// DefaultDonut fits a 200x200 viewBox.
var DefaultDonut = Donut{CX: 100, CY: 100, Outer: 80, Inner: 56}

// Scale returns the geometry multiplied by factor, preserving proportions.
func (d Donut) Scale(factor float64) Donut {
	return Donut{
		CX:    d.CX * factor,
		CY:    d.CY * factor,
		Outer: d.Outer * factor,
		Inner: d.Inner * factor,
	}
}

// Slice is a category's angular extent in degrees. Start is measured from
// the positive x axis, so -90 is 12 o'clock.
type Slice struct {
	Category Category
	Start    float64
	Sweep    float64
}

// Slices lays the categories out cumulatively from 12 o'clock. Each start
// angle depends only on the categories preceding it in the fixed order.
func Slices(counts Counts, total int) []Slice {
	slices := make([]Slice, 0, len(Categories))
	if total <= 0 {
		return slices
	}
	preceding := 0
	for _, cat := range Categories {
		n := counts.Of(cat)
		slices = append(slices, Slice{
			Category: cat,
			Start:    -90 + float64(preceding)/float64(total)*360,
			Sweep:    float64(n) / float64(total) * 360,
		})
		preceding += n
	}
	return slices
}

// ArcPath draws cat's wedge on the default geometry.
func ArcPath(cat Category, counts Counts, total int) string {
	return DefaultDonut.ArcPath(cat, counts, total)
}

// ArcPath returns the annulus wedge for cat, or "" when the category has
// nothing to draw. With total == 0 the EmptyCategory gets a full neutral
// ring and every other category is empty.
func (d Donut) ArcPath(cat Category, counts Counts, total int) string {
	if total <= 0 {
		if cat == EmptyCategory {
			return d.fullRing(-90)
		}
		return ""
	}
	if counts.Of(cat) <= 0 {
		return ""
	}

	for _, s := range Slices(counts, total) {
		if s.Category != cat {
			continue
		}
		if s.Sweep <= 0 {
			return ""
		}
		if s.Sweep >= 360 {
			return d.fullRing(s.Start)
		}
		return d.wedge(s.Start, s.Sweep)
	}
	return ""
}

func (d Donut) wedge(start, sweep float64) string {
	end := start + sweep
	largeArc := 0
	if sweep > 180 {
		largeArc = 1
	}

	x1, y1 := d.point(d.Outer, start)
	x2, y2 := d.point(d.Outer, end)
	x3, y3 := d.point(d.Inner, end)
	x4, y4 := d.point(d.Inner, start)

	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s ", num(x1), num(y1))
	fmt.Fprintf(&b, "A %s %s 0 %d 1 %s %s ", num(d.Outer), num(d.Outer), largeArc, num(x2), num(y2))
	fmt.Fprintf(&b, "L %s %s ", num(x3), num(y3))
	fmt.Fprintf(&b, "A %s %s 0 %d 0 %s %s Z", num(d.Inner), num(d.Inner), largeArc, num(x4), num(y4))
	return b.String()
}

// fullRing is drawn as two half arcs per radius: a single arc whose start
// and end coincide has no defined sweep.
func (d Donut) fullRing(start float64) string {
	mid := start + 180
	end := start + 360

	x1, y1 := d.point(d.Outer, start)
	x2, y2 := d.point(d.Outer, mid)
	x3, y3 := d.point(d.Outer, end)
	x4, y4 := d.point(d.Inner, end)
	x5, y5 := d.point(d.Inner, mid)
	x6, y6 := d.point(d.Inner, start)

	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s ", num(x1), num(y1))
	fmt.Fprintf(&b, "A %s %s 0 1 1 %s %s ", num(d.Outer), num(d.Outer), num(x2), num(y2))
	fmt.Fprintf(&b, "A %s %s 0 1 1 %s %s ", num(d.Outer), num(d.Outer), num(x3), num(y3))
	fmt.Fprintf(&b, "L %s %s ", num(x4), num(y4))
	fmt.Fprintf(&b, "A %s %s 0 1 0 %s %s ", num(d.Inner), num(d.Inner), num(x5), num(y5))
	fmt.Fprintf(&b, "A %s %s 0 1 0 %s %s Z", num(d.Inner), num(d.Inner), num(x6), num(y6))
	return b.String()
}

func (d Donut) point(radius, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return d.CX + radius*math.Cos(rad), d.CY + radius*math.Sin(rad)
}

// num prints a coordinate with at most four decimals and never "-0".
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
