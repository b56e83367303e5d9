package web

import (
	"github.com/tejusbharadwaj/turbinewatch/internal/chart"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
	"github.com/tejusbharadwaj/turbinewatch/internal/models"
	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
)

// ViewPayload is everything a client needs to draw one view.
type ViewPayload struct {
	View        orchestrator.View       `json:"view"`
	Current     bool                    `json:"current"`
	Phase       orchestrator.Phase      `json:"phase"`
	Banner      string                  `json:"banner,omitempty"`
	Filters     orchestrator.Filters    `json:"filters"`
	TurbinePage orchestrator.Pagination `json:"turbinePage"`
	AlertPage   orchestrator.Pagination `json:"alertPage"`
	Summary     orchestrator.Summary    `json:"summary"`
	Regions     []string                `json:"regions"`
	Farms       []models.Farm           `json:"farms"`
	Turbines    []TurbineRow            `json:"turbines,omitempty"`
	Alerts      []models.HealthAlert    `json:"alerts,omitempty"`
	Health      *fleet.HealthStats      `json:"health,omitempty"`
	Analytics   *AnalyticsPayload       `json:"analytics,omitempty"`
	Selected    int64                   `json:"selected,omitempty"`
}

// TurbineRow is a turbine plus its badge class.
type TurbineRow struct {
	models.Turbine
	StatusClass string `json:"statusClass"`
}

// SeriesPayload is one line chart as paths and axis labels.
type SeriesPayload struct {
	Line   string       `json:"line"`
	Area   string       `json:"area"`
	Labels []string     `json:"labels"`
	Bounds chart.Bounds `json:"bounds"`
}

type AnalyticsPayload struct {
	Rows          []fleet.AnalyticsRow `json:"rows"`
	AvgEfficiency float64              `json:"avgEfficiency"`
	Dates         []string             `json:"dates"`
	Generation    SeriesPayload        `json:"generation"`
	Efficiency    SeriesPayload        `json:"efficiency"`
}

func seriesPayload(s chart.Series) SeriesPayload {
	return SeriesPayload{
		Line:   s.Line(),
		Area:   s.Area(),
		Labels: s.Labels(),
		Bounds: s.Bounds,
	}
}

// buildView assembles v's payload from the shared state and store. The
// store holds whatever the current view loaded, so data is only attached
// for the current view.
func buildView(o *orchestrator.Orchestrator, v orchestrator.View) ViewPayload {
	state := o.State()
	store := o.Store()
	vs := state.View(v)

	p := ViewPayload{
		View:        v,
		Current:     state.Current() == v,
		Phase:       vs.Phase,
		Banner:      state.Banner(),
		Filters:     vs.Filters,
		TurbinePage: vs.Turbines,
		AlertPage:   vs.Alerts,
		Regions:     store.Regions(),
		Farms:       store.Farms(),
		Selected:    state.Selected(),
	}
	if !p.Current {
		return p
	}
	p.Summary = o.Summary()

	switch v {
	case orchestrator.Dashboard:
		health := store.Health()
		p.Health = &health
		p.Turbines = rows(store.Turbines())
		p.Alerts = store.Alerts()
	case orchestrator.Turbines:
		p.Turbines = rows(store.Turbines())
	case orchestrator.Alerts:
		p.Alerts = store.Alerts()
	case orchestrator.Analytics:
		p.Analytics = &AnalyticsPayload{
			Rows:          store.AnalyticsRows(),
			AvgEfficiency: store.AvgEfficiency(),
			Dates:         store.DateLabels(),
			Generation:    seriesPayload(store.GenerationSeries(chart.DefaultPlot)),
			Efficiency:    seriesPayload(store.EfficiencySeries(chart.DefaultPlot)),
		}
	}
	return p
}

func rows(turbines []models.Turbine) []TurbineRow {
	out := make([]TurbineRow, len(turbines))
	for i, t := range turbines {
		out[i] = TurbineRow{Turbine: t, StatusClass: models.StatusClass(string(t.Status))}
	}
	return out
}
