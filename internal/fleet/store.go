// Package fleet holds the latest snapshot fetched from the backend and
// derives every summary number from it on demand.
package fleet

import (
	"sort"
	"sync"
	"time"

	"github.com/tejusbharadwaj/turbinewatch/internal/chart"
	"github.com/tejusbharadwaj/turbinewatch/internal/models"
)

// Store owns the current turbines, farms, alerts and analytics series.
// Only the orchestrator writes to it; renders read concurrently.
type Store struct {
	mu       sync.RWMutex
	version  uint64
	turbines []models.Turbine
	farms    []models.Farm
	alerts   []models.HealthAlert
	daily    []models.DailyMetric
	graph    []models.GraphPoint
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Version increases on every write, so renders can key caches on it.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) SetTurbines(turbines []models.Turbine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turbines = turbines
	s.version++
}

func (s *Store) SetFarms(farms []models.Farm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.farms = farms
	s.version++
}

func (s *Store) SetAlerts(alerts []models.HealthAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = alerts
	s.version++
}

// SetAnalytics replaces both series wholesale.
func (s *Store) SetAnalytics(daily []models.DailyMetric, graph []models.GraphPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = daily
	s.graph = graph
	s.version++
}

// Turbines returns a copy of the loaded turbines.
func (s *Store) Turbines() []models.Turbine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Turbine(nil), s.turbines...)
}

// Farms returns a copy of the loaded farms.
func (s *Store) Farms() []models.Farm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Farm(nil), s.farms...)
}

// Alerts returns a copy of the loaded alerts.
func (s *Store) Alerts() []models.HealthAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HealthAlert(nil), s.alerts...)
}

// Alert looks up a loaded alert by id.
func (s *Store) Alert(id int64) (models.HealthAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return models.HealthAlert{}, false
}

// RemoveAlert drops an alert from the local list and reports whether it
// was present.
func (s *Store) RemoveAlert(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.alerts {
		if a.ID != id {
			continue
		}
		alerts := make([]models.HealthAlert, 0, len(s.alerts)-1)
		alerts = append(alerts, s.alerts[:i]...)
		s.alerts = append(alerts, s.alerts[i+1:]...)
		s.version++
		return true
	}
	return false
}

// Turbine looks up a loaded turbine by id.
func (s *Store) Turbine(id int64) (models.Turbine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.turbines {
		if t.ID == id {
			return t, true
		}
	}
	return models.Turbine{}, false
}

// AlertsFor lists the loaded alerts referencing turbine id.
func (s *Store) AlertsFor(id int64) []models.HealthAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.HealthAlert
	for _, a := range s.alerts {
		if ref, ok := a.TurbineRef(); ok && ref == id {
			out = append(out, a)
		}
	}
	return out
}

// Regions is the deduplicated set of farm regions, sorted for stable output.
func (s *Store) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.farms))
	regions := make([]string, 0, len(s.farms))
	for _, f := range s.farms {
		if _, ok := seen[f.Region]; ok {
			continue
		}
		seen[f.Region] = struct{}{}
		regions = append(regions, f.Region)
	}
	sort.Strings(regions)
	return regions
}

// TotalCapacity sums rated power over the loaded turbines.
func (s *Store) TotalCapacity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, t := range s.turbines {
		sum += t.RatedPower
	}
	return sum
}

// ActiveTurbines counts loaded turbines with ACTIVE status.
func (s *Store) ActiveTurbines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.turbines {
		if t.Status == models.StatusActive {
			n++
		}
	}
	return n
}

// Health buckets the loaded turbines against the loaded alerts.
func (s *Store) Health() HealthStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Classify(s.turbines, s.alerts)
}

// HealthStats are the bucket counts with their share of the fleet.
type HealthStats struct {
	chart.Counts
	Total           int     `json:"total"`
	HealthyPercent  float64 `json:"healthyPercent"`
	WarningPercent  float64 `json:"warningPercent"`
	CriticalPercent float64 `json:"criticalPercent"`
	OfflinePercent  float64 `json:"offlinePercent"`
}

// Classify assigns each turbine to exactly one bucket. Precedence is
// down status, then an escalated alert, then any other alert. Any status
// other than ACTIVE counts as offline. Resolved alerts are ignored.
func Classify(turbines []models.Turbine, alerts []models.HealthAlert) HealthStats {
	escalated := make(map[int64]bool)
	alerted := make(map[int64]bool)
	for _, a := range alerts {
		id, ok := a.TurbineRef()
		if !ok || a.Status == models.AlertResolved {
			continue
		}
		alerted[id] = true
		if a.Severity.Escalated() {
			escalated[id] = true
		}
	}

	var c chart.Counts
	for _, t := range turbines {
		switch {
		case t.Status != models.StatusActive:
			c.Offline++
		case escalated[t.ID]:
			c.Critical++
		case alerted[t.ID]:
			c.Warning++
		default:
			c.Healthy++
		}
	}

	total := len(turbines)
	return HealthStats{
		Counts:          c,
		Total:           total,
		HealthyPercent:  percent(c.Healthy, total),
		WarningPercent:  percent(c.Warning, total),
		CriticalPercent: percent(c.Critical, total),
		OfflinePercent:  percent(c.Offline, total),
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// AnalyticsRow is a daily metric prepared for the table view.
type AnalyticsRow struct {
	Date        string  `json:"date"`
	DisplayDate string  `json:"displayDate"`
	Farm        string  `json:"farm"`
	Generation  float64 `json:"generation"`
	Efficiency  float64 `json:"efficiency"`
	Hours       float64 `json:"hours"`
	MaxPower    float64 `json:"maxPower"`
}

// AnalyticsRows maps the loaded daily metrics for display.
func (s *Store) AnalyticsRows() []AnalyticsRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]AnalyticsRow, 0, len(s.daily))
	for _, m := range s.daily {
		farm := m.Farm
		if farm == "" {
			farm = "Unknown"
		}
		rows = append(rows, AnalyticsRow{
			Date:        m.Date,
			DisplayDate: DisplayDate(m.Date),
			Farm:        farm,
			Generation:  m.TotalGeneration,
			Efficiency:  m.AvgEfficiency,
			Hours:       m.OperatingHours,
			MaxPower:    m.MaxPower,
		})
	}
	return rows
}

// AvgEfficiency is the mean positive efficiency over the fleet-wide daily
// rows, the same rows the efficiency chart plots. Zero when there are none.
func (s *Store) AvgEfficiency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	n := 0
	for _, m := range s.daily {
		if m.Farm != models.AllFarms || m.AvgEfficiency <= 0 {
			continue
		}
		sum += m.AvgEfficiency
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Graph returns a copy of the loaded graph points.
func (s *Store) Graph() []models.GraphPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GraphPoint(nil), s.graph...)
}

// GenerationSeries fits the generation axis to the loaded graph points.
func (s *Store) GenerationSeries(plot chart.Plot) chart.Series {
	graph := s.Graph()
	values := make([]float64, len(graph))
	for i, g := range graph {
		values[i] = g.Generation
	}
	return chart.NewSeries(plot, chart.GenerationAxis, values)
}

// EfficiencySeries fits the efficiency axis to the loaded graph points.
func (s *Store) EfficiencySeries(plot chart.Plot) chart.Series {
	graph := s.Graph()
	values := make([]float64, len(graph))
	for i, g := range graph {
		values[i] = g.Efficiency
	}
	return chart.NewSeries(plot, chart.EfficiencyAxis, values)
}

// DisplayDate renders "2024-05-01" as "May 1". Unparseable input is
// returned as an empty label.
func DisplayDate(date string) string {
	if date == "" {
		return ""
	}
	t, err := models.ParseTimestamp(date)
	if err != nil || t.IsZero() {
		return ""
	}
	return t.Format("Jan 2")
}

// DateLabels returns the x axis labels for the loaded graph points.
func (s *Store) DateLabels() []string {
	graph := s.Graph()
	labels := make([]string, len(graph))
	for i, g := range graph {
		labels[i] = DisplayDate(g.Date)
	}
	return labels
}

// Snapshot is a consistent read of the store for a view payload.
type Snapshot struct {
	Version  uint64               `json:"version"`
	Turbines []models.Turbine     `json:"turbines"`
	Farms    []models.Farm        `json:"farms"`
	Alerts   []models.HealthAlert `json:"alerts"`
	TakenAt  time.Time            `json:"takenAt"`
}

// Snapshot copies the collections under one read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version:  s.version,
		Turbines: append([]models.Turbine(nil), s.turbines...),
		Farms:    append([]models.Farm(nil), s.farms...),
		Alerts:   append([]models.HealthAlert(nil), s.alerts...),
		TakenAt:  time.Now(),
	}
}
