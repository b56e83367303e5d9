// Package orchestrator decides which backend calls each view needs, applies
// the results to the fleet store and tracks per-view UI state.
//
// Every load is tagged with a generation token. A completion is applied
// only if it is still the newest load of its view and that view is still
// on screen, so a slow response can never overwrite a newer one.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tejusbharadwaj/turbinewatch/internal/api"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
	"github.com/tejusbharadwaj/turbinewatch/internal/models"
)

// Banner is shown while the backend cannot be reached.
const Banner = "Backend not running. Please start the backend server."

const (
	MinPeriodDays = 1
	MaxPeriodDays = 365
	MinPageSize   = 1
	MaxPageSize   = 100
)

var (
	ErrUnknownView        = errors.New("unknown view")
	ErrNotPaginated       = errors.New("view has no paginated listing")
	ErrInvalidPeriod      = errors.New("period must be between 1 and 365 days")
	ErrInvalidPageSize    = errors.New("page size must be between 1 and 100")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrMissingAlertID     = errors.New("missing alert id")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrResolveFailed      = errors.New("failed to resolve alert")
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrTurbineNotFound    = errors.New("turbine not found")
)

// Notice is the operator-facing text for a resolve failure.
func Notice(err error) string {
	switch {
	case errors.Is(err, ErrAlertNotFound):
		return "Alert not found. It may have already been resolved."
	case errors.Is(err, ErrResolveFailed):
		return "Failed to resolve alert. Please try again."
	case err != nil:
		return err.Error()
	}
	return ""
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for analytics ranges.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithConnectivityObserver is called whenever the banner appears or clears.
func WithConnectivityObserver(fn func(reachable bool)) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, fn) }
}

// Orchestrator drives the views.
type Orchestrator struct {
	backend   api.Backend
	store     *fleet.Store
	state     *State
	logger    logrus.FieldLogger
	now       func() time.Time
	observers []func(reachable bool)
}

func New(backend api.Backend, store *fleet.Store, state *State, logger logrus.FieldLogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		store:   store,
		state:   state,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() *State       { return o.state }
func (o *Orchestrator) Store() *fleet.Store { return o.store }

// Navigate makes v the current view and loads it.
func (o *Orchestrator) Navigate(ctx context.Context, v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	o.state.navigate(v)
	return o.load(ctx, v)
}

// Refresh reloads the current view with its current filters and page.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	return o.load(ctx, o.state.Current())
}

// SetFilters replaces v's filters and returns to the first page. The view
// is refetched if it is on screen. An out-of-range analytics period is
// reset to the default and rejected without a fetch.
func (o *Orchestrator) SetFilters(ctx context.Context, v View, f Filters) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	if v == Analytics {
		if f.PeriodDays == 0 {
			f.PeriodDays = o.state.periodDays
		}
		if f.PeriodDays < MinPeriodDays || f.PeriodDays > MaxPeriodDays {
			o.state.update(v, func(vs *ViewState) {
				vs.Filters.PeriodDays = o.state.periodDays
			})
			return fmt.Errorf("%w: got %d", ErrInvalidPeriod, f.PeriodDays)
		}
	} else {
		f.PeriodDays = 0
	}

	o.state.update(v, func(vs *ViewState) {
		vs.Filters = f
		vs.Turbines.Page = 0
		vs.Alerts.Page = 0
	})
	if o.state.Current() != v {
		return nil
	}
	return o.load(ctx, v)
}

// GoToPage moves v's listing to page, which must lie in [0, totalPages).
func (o *Orchestrator) GoToPage(ctx context.Context, v View, page int) error {
	var err error
	o.state.update(v, func(vs *ViewState) {
		p, perr := pagination(v, vs)
		if perr != nil {
			err = perr
			return
		}
		if page < 0 || page >= p.TotalPages {
			err = fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, p.TotalPages)
			return
		}
		p.Page = page
	})
	if err != nil {
		return err
	}
	if o.state.Current() != v {
		return nil
	}
	return o.load(ctx, v)
}

// SetPageSize changes v's page size and returns to the first page.
func (o *Orchestrator) SetPageSize(ctx context.Context, v View, size int) error {
	if size < MinPageSize || size > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	var err error
	o.state.update(v, func(vs *ViewState) {
		p, perr := pagination(v, vs)
		if perr != nil {
			err = perr
			return
		}
		p.Size = size
		p.Page = 0
	})
	if err != nil {
		return err
	}
	if o.state.Current() != v {
		return nil
	}
	return o.load(ctx, v)
}

func pagination(v View, vs *ViewState) (*Pagination, error) {
	switch v {
	case Turbines:
		return &vs.Turbines, nil
	case Alerts:
		return &vs.Alerts, nil
	case Dashboard, Analytics:
		return nil, fmt.Errorf("%w: %s", ErrNotPaginated, v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
}

// TurbineDetail is what the detail panel shows for a selected turbine.
type TurbineDetail struct {
	Turbine models.Turbine       `json:"turbine"`
	Alerts  []models.HealthAlert `json:"alerts"`
}

// SelectTurbine opens the detail panel. Loaded turbines are served locally;
// others are fetched on demand without touching the store.
func (o *Orchestrator) SelectTurbine(ctx context.Context, id int64) (TurbineDetail, error) {
	t, ok := o.store.Turbine(id)
	if !ok {
		fetched, err := o.backend.Turbine(ctx, id)
		if err != nil {
			if api.IsNotFound(err) {
				return TurbineDetail{}, fmt.Errorf("%w: %d", ErrTurbineNotFound, id)
			}
			return TurbineDetail{}, err
		}
		t = fetched
	}
	o.state.setSelected(id)
	return TurbineDetail{Turbine: t, Alerts: o.store.AlertsFor(id)}, nil
}

// ClearSelection closes the detail panel.
func (o *Orchestrator) ClearSelection() {
	o.state.setSelected(0)
}

// ResolveAlert resolves id on the backend. The alert disappears from the
// loaded list immediately; the list is refetched afterwards either way. An
// alert already known to be resolved is a no-op.
func (o *Orchestrator) ResolveAlert(ctx context.Context, id int64) error {
	if id == 0 {
		return ErrMissingAlertID
	}
	logger := o.logger.WithFields(logrus.Fields{
		"alert_id":   id,
		"request_id": uuid.New().String(),
	})

	view := o.state.Current()
	var skip bool
	o.state.update(view, func(vs *ViewState) {
		alert, found := o.store.Alert(id)
		if found && alert.Status == models.AlertResolved {
			skip = true
			return
		}
		if found && o.store.RemoveAlert(id) {
			vs.Alerts.decrement()
		}
		// in-flight loads predate the removal
		vs.Generation++
	})
	if skip {
		logger.Debug("Alert already resolved")
		AlertResolutions.WithLabelValues("noop").Inc()
		return nil
	}

	err := o.backend.ResolveAlert(ctx, id)
	if refreshErr := o.refetchAlerts(ctx, view, err != nil); refreshErr != nil {
		logger.WithError(refreshErr).Warn("Refetch after resolve failed")
	}
	if err != nil {
		if api.IsNotFound(err) {
			logger.Info("Alert not found on resolve")
			AlertResolutions.WithLabelValues("not_found").Inc()
			return ErrAlertNotFound
		}
		logger.WithError(err).Error("Failed to resolve alert")
		AlertResolutions.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}

	logger.Info("Alert resolved")
	AlertResolutions.WithLabelValues("resolved").Inc()
	return nil
}

// refetchAlerts reloads views that list alerts. Other views only get their
// alert slice back, and only when the resolve failed, so the turbine detail
// stops hiding an alert that is still active.
func (o *Orchestrator) refetchAlerts(ctx context.Context, v View, failed bool) error {
	switch v {
	case Dashboard, Alerts:
		return o.load(ctx, v)
	}
	if !failed {
		return nil
	}
	vs := o.state.View(v)
	listing, err := o.backend.Alerts(ctx, api.AlertQuery{Farm: vs.Filters.Farm, Region: vs.Filters.Region})
	if err != nil {
		return err
	}
	// a newer load for v already brings its own alerts
	o.state.commit(v, vs.Generation, func(*ViewState) {
		o.store.SetAlerts(listing.Items)
	})
	return nil
}

// load issues a new generation for v and runs the view's fetch plan.
func (o *Orchestrator) load(ctx context.Context, v View) error {
	gen := o.state.issue(v)
	start := time.Now()
	defer func() {
		ViewLoadLatency.WithLabelValues(string(v)).Observe(time.Since(start).Seconds())
	}()

	logger := o.logger.WithFields(logrus.Fields{
		"view":       v,
		"generation": gen,
	})
	logger.Debug("Loading view")

	filters := o.state.View(v).Filters
	var err error
	switch v {
	case Dashboard:
		err = o.loadDashboard(ctx, gen, filters, logger)
	case Turbines:
		err = o.loadTurbines(ctx, gen, filters, logger)
	case Alerts:
		err = o.loadAlerts(ctx, gen, filters, logger)
	case Analytics:
		err = o.loadAnalytics(ctx, gen, filters, logger)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	if errors.Is(err, errStale) {
		logger.Debug("Discarded stale response")
		ViewLoads.WithLabelValues(string(v), "stale").Inc()
		return nil
	}
	if err != nil {
		return err
	}
	ViewLoads.WithLabelValues(string(v), "applied").Inc()
	return nil
}

var errStale = errors.New("stale response")

func (o *Orchestrator) commit(v View, gen uint64, fn func(vs *ViewState)) error {
	if !o.state.commit(v, gen, fn) {
		return errStale
	}
	return nil
}

func (o *Orchestrator) loadDashboard(ctx context.Context, gen uint64, f Filters, logger logrus.FieldLogger) error {
	farms, err := o.backend.Farms(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if api.IsUnreachable(err) {
			return o.unreachable(Dashboard, gen, err, logger)
		}
		logger.WithError(err).Warn("Farms unavailable, continuing without them")
		farms = nil
	}

	turbines, err := o.backend.Turbines(ctx, api.TurbineQuery{Farm: f.Farm, Region: f.Region})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("Turbines unavailable")
		turbines = models.Collection[models.Turbine](nil)
	}

	alerts, err := o.backend.Alerts(ctx, api.AlertQuery{Farm: f.Farm, Region: f.Region})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("Alerts unavailable")
		alerts = models.Collection[models.HealthAlert](nil)
	}

	if err := o.commit(Dashboard, gen, func(vs *ViewState) {
		o.store.SetFarms(farms)
		o.store.SetTurbines(turbines.Items)
		o.store.SetAlerts(alerts.Items)
		absorb(&vs.Turbines, turbines)
		absorb(&vs.Alerts, alerts)
		vs.Phase = Loaded
	}); err != nil {
		return err
	}
	o.reachable()
	return nil
}

func (o *Orchestrator) loadTurbines(ctx context.Context, gen uint64, f Filters, logger logrus.FieldLogger) error {
	page := o.state.View(Turbines).Turbines
	listing, err := o.backend.Turbines(ctx, api.TurbineQuery{
		Farm:   f.Farm,
		Region: f.Region,
		Status: f.Status,
		Paging: &api.Paging{Page: page.Page, Size: page.Size},
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if api.IsUnreachable(err) {
			return o.unreachable(Turbines, gen, err, logger)
		}
		logger.WithError(err).Warn("Turbines unavailable")
		return o.commit(Turbines, gen, func(vs *ViewState) {
			o.store.SetTurbines(nil)
			vs.Turbines.clear()
			vs.Phase = Loaded
		})
	}

	if err := o.commit(Turbines, gen, func(vs *ViewState) {
		o.store.SetTurbines(listing.Items)
		absorb(&vs.Turbines, listing)
		vs.Phase = Loaded
	}); err != nil {
		return err
	}
	o.reachable()
	return nil
}

func (o *Orchestrator) loadAlerts(ctx context.Context, gen uint64, f Filters, logger logrus.FieldLogger) error {
	page := o.state.View(Alerts).Alerts
	listing, err := o.backend.Alerts(ctx, api.AlertQuery{
		Farm:   f.Farm,
		Region: f.Region,
		Paging: &api.Paging{Page: page.Page, Size: page.Size},
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("Alerts unavailable")
		return o.commit(Alerts, gen, func(vs *ViewState) {
			o.store.SetAlerts(nil)
			vs.Alerts.clear()
			vs.Phase = Loaded
		})
	}

	if err := o.commit(Alerts, gen, func(vs *ViewState) {
		o.store.SetAlerts(listing.Items)
		absorb(&vs.Alerts, listing)
		vs.Phase = Loaded
	}); err != nil {
		return err
	}
	o.reachable()
	return nil
}

// Range is the analytics window for a period of days ending today.
func Range(now time.Time, days int) (time.Time, time.Time) {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 23, 59, 59, 0, now.Location())
	start := time.Date(y, m, d-(days-1), 0, 0, 0, 0, now.Location())
	return start, end
}

func (o *Orchestrator) loadAnalytics(ctx context.Context, gen uint64, f Filters, logger logrus.FieldLogger) error {
	days := f.PeriodDays
	if days == 0 {
		days = o.state.periodDays
	}
	start, end := Range(o.now(), days)
	rq := api.RangeQuery{Start: start, End: end, Farm: f.Farm}

	var (
		g        errgroup.Group
		turbines models.Listing[models.Turbine]
		daily    []models.DailyMetric
		graph    []models.GraphPoint
	)
	g.Go(func() error {
		l, err := o.backend.Turbines(ctx, api.TurbineQuery{Farm: f.Farm, Region: f.Region})
		if err != nil {
			logger.WithError(err).Warn("Turbines unavailable")
			l = models.Collection[models.Turbine](nil)
		}
		turbines = l
		return nil
	})
	g.Go(func() error {
		rows, err := o.backend.DailyMetrics(ctx, rq)
		if err != nil {
			logger.WithError(err).Warn("Daily metrics unavailable")
			rows = nil
		}
		daily = rows
		return nil
	})
	g.Go(func() error {
		points, err := o.backend.GraphData(ctx, rq)
		if err != nil {
			logger.WithError(err).Warn("Graph data unavailable")
			points = nil
		}
		graph = points
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return o.commit(Analytics, gen, func(vs *ViewState) {
		o.store.SetTurbines(turbines.Items)
		o.store.SetAnalytics(daily, graph)
		absorb(&vs.Turbines, turbines)
		vs.Phase = Loaded
	})
}

// unreachable raises the banner and marks v errored.
func (o *Orchestrator) unreachable(v View, gen uint64, cause error, logger logrus.FieldLogger) error {
	if err := o.commit(v, gen, func(vs *ViewState) {
		// drop what another view left behind
		if v == Turbines {
			o.store.SetTurbines(nil)
			vs.Turbines.clear()
		}
		vs.Phase = Errored
	}); err != nil {
		return err
	}
	logger.WithError(cause).Error("Backend unreachable")
	ViewLoads.WithLabelValues(string(v), "unreachable").Inc()
	if o.state.setBanner(Banner) {
		o.notify(false)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnreachable, cause)
}

func (o *Orchestrator) reachable() {
	if o.state.setBanner("") {
		o.notify(true)
	}
}

func (o *Orchestrator) notify(reachable bool) {
	for _, fn := range o.observers {
		fn(reachable)
	}
}
