package orchestrator

import (
	"fmt"
	"sync"

	"github.com/tejusbharadwaj/turbinewatch/internal/models"
)

// View is one logical page of the dashboard.
type View string

const (
	Dashboard View = "dashboard"
	Turbines  View = "turbines"
	Alerts    View = "alerts"
	Analytics View = "analytics"
)

// Views lists every view in tab order.
var Views = []View{Dashboard, Turbines, Analytics, Alerts}

// ParseView validates a view name.
func ParseView(name string) (View, error) {
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Phase of a view's most recent load.
type Phase string

const (
	Idle    Phase = "idle"
	Loading Phase = "loading"
	Loaded  Phase = "loaded"
	Errored Phase = "errored"
)

// Filters are a view's optional constraints. Empty strings and a zero
// period mean "no constraint" / "default period".
type Filters struct {
	Farm       string `json:"farm,omitempty"`
	Region     string `json:"region,omitempty"`
	Status     string `json:"status,omitempty"`
	PeriodDays int    `json:"periodDays,omitempty"`
}

// Pagination tracks one listing's window and totals.
type Pagination struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// absorb copies totals from a fetched listing.
func absorb[T any](p *Pagination, l models.Listing[T]) {
	if meta, ok := l.Paged(); ok {
		p.TotalItems = meta.TotalElements
		p.TotalPages = meta.TotalPages
		p.Page = meta.Page
		return
	}
	p.TotalItems = int64(len(l.Items))
	p.TotalPages = models.PageCount(p.TotalItems, p.Size)
}

func (p *Pagination) clear() {
	p.TotalItems = 0
	p.TotalPages = 0
}

// decrement drops one item after an optimistic removal.
func (p *Pagination) decrement() {
	if p.TotalItems > 0 {
		p.TotalItems--
	}
	p.TotalPages = models.PageCount(p.TotalItems, p.Size)
}

// ViewState is everything remembered about one view.
type ViewState struct {
	Phase      Phase      `json:"phase"`
	Filters    Filters    `json:"filters"`
	Turbines   Pagination `json:"turbinePage"`
	Alerts     Pagination `json:"alertPage"`
	Generation uint64     `json:"generation"`
}

// State is the explicit UI state shared by the orchestrator and the
// handlers. It has one entry per view instead of loose flags.
type State struct {
	mu       sync.Mutex
	current  View
	views    map[View]*ViewState
	banner   string
	selected int64

	pageSize   int
	periodDays int
}

// NewState starts every view idle with the given defaults.
func NewState(pageSize, periodDays int) *State {
	s := &State{
		current:    Dashboard,
		views:      make(map[View]*ViewState, len(Views)),
		pageSize:   pageSize,
		periodDays: periodDays,
	}
	for _, v := range Views {
		s.views[v] = &ViewState{
			Phase:    Idle,
			Turbines: Pagination{Size: pageSize},
			Alerts:   Pagination{Size: pageSize},
		}
	}
	s.views[Analytics].Filters.PeriodDays = periodDays
	return s
}

// Current is the active view.
func (s *State) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// View returns a copy of v's state.
func (s *State) View(v View) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.views[v]
}

// Banner is the persistent connectivity message, empty when reachable.
func (s *State) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// Selected is the turbine opened in the detail panel, 0 for none.
func (s *State) Selected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// navigate switches view, resetting list pagination and the selection.
func (s *State) navigate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	s.selected = 0
	for _, vs := range s.views {
		vs.Turbines = Pagination{Size: s.pageSize}
		vs.Alerts = Pagination{Size: s.pageSize}
	}
}

// issue starts a load of v and returns its generation token.
func (s *State) issue(v View) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	vs.Generation++
	vs.Phase = Loading
	return vs.Generation
}

// invalidate makes every in-flight load of v stale.
func (s *State) invalidate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v].Generation++
}

// commit runs fn under the state lock if gen is still the newest load of
// v and v is still on screen. It reports whether fn ran.
func (s *State) commit(v View, gen uint64, fn func(vs *ViewState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.views[v]
	if vs.Generation != gen || s.current != v {
		return false
	}
	fn(vs)
	return true
}

// update mutates v's state unconditionally.
func (s *State) update(v View, fn func(vs *ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.views[v])
}

func (s *State) setBanner(text string) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed = s.banner != text
	s.banner = text
	return changed
}

func (s *State) setSelected(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}
