package orchestrator

// Summary is the headline numbers of the current view.
type Summary struct {
	TotalTurbines  int64   `json:"totalTurbines"`
	ActiveTurbines int     `json:"activeTurbines"`
	ActiveAlerts   int64   `json:"activeAlerts"`
	TotalFarms     int     `json:"totalFarms"`
	TotalCapacity  float64 `json:"totalCapacity"`
}

// Summary derives the headline numbers. Totals come from listing metadata
// when the backend paged the response, otherwise from what is loaded.
func (o *Orchestrator) Summary() Summary {
	vs := o.state.View(o.state.Current())
	return Summary{
		TotalTurbines:  vs.Turbines.TotalItems,
		ActiveTurbines: o.store.ActiveTurbines(),
		ActiveAlerts:   vs.Alerts.TotalItems,
		TotalFarms:     len(o.store.Farms()),
		TotalCapacity:  o.store.TotalCapacity(),
	}
}
