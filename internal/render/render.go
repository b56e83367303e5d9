// Package render draws the dashboard charts as standalone SVG documents.
//
// Documents are cached in an LRU keyed by chart name and store version, so
// repeated requests between two loads cost a map lookup. A write to the
// store bumps its version and the old entries age out on their own.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejusbharadwaj/turbinewatch/internal/chart"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
)

// Chart names, also used as URL path segments.
const (
	DonutChart      = "donut"
	GenerationChart = "generation"
	EfficiencyChart = "efficiency"
)

var CacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turbinewatch_chart_cache_lookups_total",
		Help: "Chart cache lookups by chart and result.",
	},
	[]string{"chart", "result"},
)

// Renderer draws charts from a fleet store.
type Renderer struct {
	store *fleet.Store
	cache *lru.Cache
	plot  chart.Plot
	donut chart.Donut
}

// New creates a renderer with an LRU of the given size.
func New(store *fleet.Store, size int) (*Renderer, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("chart cache: %w", err)
	}
	return &Renderer{
		store: store,
		cache: cache,
		plot:  chart.DefaultPlot,
		donut: chart.DefaultDonut,
	}, nil
}

// Chart renders the named chart.
func (r *Renderer) Chart(name string) ([]byte, error) {
	switch name {
	case DonutChart:
		return r.cached(name, r.drawDonut), nil
	case GenerationChart:
		return r.cached(name, func(w io.Writer) {
			r.drawSeries(w, "Daily generation (MWh)", r.store.GenerationSeries(r.plot), "#2563eb")
		}), nil
	case EfficiencyChart:
		return r.cached(name, func(w io.Writer) {
			r.drawSeries(w, "Average efficiency (%)", r.store.EfficiencySeries(r.plot), "#16a34a")
		}), nil
	default:
		return nil, fmt.Errorf("unknown chart %q", name)
	}
}

func cacheKey(name string, version uint64) string {
	return name + ":" + strconv.FormatUint(version, 10)
}

// cached serves name for the current store version, drawing it on a miss.
// A document is only stored if the store did not change while drawing.
func (r *Renderer) cached(name string, draw func(io.Writer)) []byte {
	version := r.store.Version()
	key := cacheKey(name, version)
	if doc, ok := r.cache.Get(key); ok {
		CacheLookups.WithLabelValues(name, "hit").Inc()
		return doc.([]byte)
	}
	CacheLookups.WithLabelValues(name, "miss").Inc()

	var buf bytes.Buffer
	draw(&buf)
	doc := buf.Bytes()
	if r.store.Version() == version {
		r.cache.Add(key, doc)
	}
	return doc
}

func (r *Renderer) drawDonut(w io.Writer) {
	health := r.store.Health()
	size := int(math.Ceil(2 * (r.donut.CX)))

	canvas := svg.New(w)
	canvas.Startview(size, size, 0, 0, size, size)
	canvas.Title("Fleet health")
	for _, cat := range chart.Categories {
		d := r.donut.ArcPath(cat, health.Counts, health.Total)
		if d == "" {
			continue
		}
		canvas.Path(d, fmt.Sprintf(`fill="%s" fill-rule="evenodd" class="slice-%s"`, cat.Color(), cat))
	}
	cx, cy := int(math.Round(r.donut.CX)), int(math.Round(r.donut.CY))
	canvas.Text(cx, cy, strconv.Itoa(health.Total), `text-anchor="middle" font-size="28" font-weight="bold"`)
	canvas.Text(cx, cy+20, "turbines", `text-anchor="middle" font-size="12" fill="#6b7280"`)
	canvas.End()
}

func (r *Renderer) drawSeries(w io.Writer, title string, s chart.Series, color string) {
	p := s.Plot
	width := int(math.Ceil(p.Left + p.Width + p.Left))
	height := int(math.Ceil(p.Bottom + 40))

	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width, height)
	canvas.Title(title)

	labels := s.Labels()
	step := (p.Bottom - p.Top) / float64(chart.LabelRows-1)
	left, right := int(p.Left), int(math.Round(p.Left+p.Width))
	for row, label := range labels {
		y := int(math.Round(p.Top + float64(row)*step))
		canvas.Line(left, y, right, y, `stroke="#e5e7eb" stroke-width="1"`)
		canvas.Text(left-8, y+4, label, `text-anchor="end" font-size="11" fill="#6b7280"`)
	}

	if area := s.Area(); area != "" {
		canvas.Path(area, fmt.Sprintf(`fill="%s" fill-opacity="0.15" stroke="none"`, color))
	}
	if line := s.Line(); line != "" {
		canvas.Path(line, fmt.Sprintf(`fill="none" stroke="%s" stroke-width="2"`, color))
	}

	dates := r.store.DateLabels()
	n := len(dates)
	every := 1
	if n > 7 {
		every = int(math.Ceil(float64(n) / 7))
	}
	base := int(math.Round(p.Bottom + 24))
	for i := 0; i < n; i += every {
		x := int(math.Round(p.X(i, n)))
		canvas.Text(x, base, dates[i], `text-anchor="middle" font-size="11" fill="#6b7280"`)
	}
	canvas.End()
}
