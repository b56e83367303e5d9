package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/turbinewatch/internal/api"
	"github.com/tejusbharadwaj/turbinewatch/internal/api/mocks"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
	"github.com/tejusbharadwaj/turbinewatch/internal/models"
	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
	"github.com/tejusbharadwaj/turbinewatch/internal/render"
)

type fixture struct {
	e       *echo.Echo
	backend *mocks.MockBackend
	orch    *orchestrator.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newLimitedFixture(t, Options{RateLimit: 1000, RateLimitBurst: 1000})
}

func newLimitedFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	backend := mocks.NewMockBackend(ctrl)
	store := fleet.NewStore()
	orch := orchestrator.New(backend, store, orchestrator.NewState(10, 30), logger)
	charts, err := render.New(store, 16)
	require.NoError(t, err)

	h := NewHandler(orch, charts, logger)
	return &fixture{
		e:       NewServer(h, opts, logger),
		backend: backend,
		orch:    orch,
	}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ViewPayload {
	t.Helper()
	var p ViewPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func statusErr(status int) error {
	return &api.StatusError{Endpoint: "/test", Status: status, Err: api.ErrStatus}
}

func (f *fixture) expectDashboard(alerts ...models.HealthAlert) {
	f.backend.EXPECT().Farms(gomock.Any()).Return([]models.Farm{{ID: 1, Name: "North Ridge", Region: "West"}}, nil)
	f.backend.EXPECT().Turbines(gomock.Any(), gomock.Any()).Return(models.Collection([]models.Turbine{
		{ID: 1, Name: "T1", Status: models.StatusActive, RatedPower: 2},
		{ID: 2, Name: "T2", Status: models.StatusMaintenance, RatedPower: 3},
	}), nil)
	f.backend.EXPECT().Alerts(gomock.Any(), gomock.Any()).Return(models.Collection(alerts), nil)
}

func TestNavigateDashboard(t *testing.T) {
	f := newFixture(t)
	f.expectDashboard(models.HealthAlert{ID: 5, Turbine: &models.Turbine{ID: 1}, Severity: models.SeverityHigh, Status: models.AlertActive})

	rec := f.do(http.MethodPost, "/api/views/dashboard/navigate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	p := decodeView(t, rec)
	assert.True(t, p.Current)
	assert.Equal(t, orchestrator.Loaded, p.Phase)
	assert.Empty(t, p.Banner)
	assert.Equal(t, []string{"West"}, p.Regions)
	require.NotNil(t, p.Health)
	assert.Equal(t, 1, p.Health.Critical)
	assert.Equal(t, 1, p.Health.Offline)
	assert.Equal(t, int64(2), p.Summary.TotalTurbines)
	assert.Equal(t, int64(1), p.Summary.ActiveAlerts)
	require.Len(t, p.Turbines, 2)
	assert.Equal(t, "status-maintenance", p.Turbines[1].StatusClass)
}

func TestNavigateUnreachableShowsBanner(t *testing.T) {
	f := newFixture(t)
	f.backend.EXPECT().Farms(gomock.Any()).Return(nil, statusErr(http.StatusNotFound))

	rec := f.do(http.MethodPost, "/api/views/dashboard/navigate", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	p := decodeView(t, rec)
	assert.Equal(t, orchestrator.Banner, p.Banner)
	assert.Equal(t, orchestrator.Errored, p.Phase)

	rec = f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
	}{
		{name: "unknown view", method: http.MethodGet, target: "/api/views/reports", wantCode: http.StatusNotFound},
		{name: "bad status filter", method: http.MethodPut, target: "/api/views/turbines/filters", body: `{"status":"BROKEN"}`, wantCode: http.StatusBadRequest},
		{name: "period out of range", method: http.MethodPut, target: "/api/views/analytics/filters", body: `{"periodDays":400}`, wantCode: http.StatusBadRequest},
		{name: "page not a number", method: http.MethodPut, target: "/api/views/turbines/page/x", wantCode: http.StatusBadRequest},
		{name: "page out of range", method: http.MethodPut, target: "/api/views/turbines/page/3", wantCode: http.StatusBadRequest},
		{name: "page size too large", method: http.MethodPut, target: "/api/views/alerts/size/500", wantCode: http.StatusBadRequest},
		{name: "dashboard has no pages", method: http.MethodPut, target: "/api/views/dashboard/page/0", wantCode: http.StatusBadRequest},
		{name: "missing alert id", method: http.MethodPost, target: "/api/alerts/0/resolve", wantCode: http.StatusBadRequest},
		{name: "bad turbine id", method: http.MethodGet, target: "/api/turbines/abc", wantCode: http.StatusBadRequest},
		{name: "unknown chart", method: http.MethodGet, target: "/charts/pie.svg", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestFiltersOnHiddenViewAreStored(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPut, "/api/views/alerts/filters", `{"farm":"All Farms","region":"West"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeView(t, rec)
	assert.False(t, p.Current)
	assert.Equal(t, orchestrator.Filters{Region: "West"}, p.Filters)
}

func TestResolveAlert(t *testing.T) {
	tests := []struct {
		name        string
		resolveErr  error
		wantCode    int
		wantMessage string
	}{
		{name: "resolved", wantCode: http.StatusNoContent},
		{name: "already gone", resolveErr: statusErr(http.StatusNotFound), wantCode: http.StatusNotFound, wantMessage: "Alert not found. It may have already been resolved."},
		{name: "backend failure", resolveErr: statusErr(http.StatusInternalServerError), wantCode: http.StatusBadGateway, wantMessage: "Failed to resolve alert. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			alert := models.HealthAlert{ID: 5, Turbine: &models.Turbine{ID: 1}, Severity: models.SeverityLow, Status: models.AlertActive}
			f.expectDashboard(alert)
			require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/views/dashboard/navigate", "").Code)

			f.backend.EXPECT().ResolveAlert(gomock.Any(), int64(5)).Return(tt.resolveErr)
			f.expectDashboard()

			rec := f.do(http.MethodPost, "/api/alerts/5/resolve", "")
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, message(t, rec))
			}
		})
	}
}

func TestTurbineDetail(t *testing.T) {
	f := newFixture(t)
	f.backend.EXPECT().Turbine(gomock.Any(), int64(9)).Return(models.Turbine{ID: 9, Name: "Far"}, nil)

	rec := f.do(http.MethodGet, "/api/turbines/9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Far"`)
	assert.Equal(t, int64(9), f.orch.State().Selected())

	rec = f.do(http.MethodDelete, "/api/selection", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, f.orch.State().Selected())
}

func TestCharts(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"donut.svg", "generation.svg", "efficiency"} {
		rec := f.do(http.MethodGet, "/charts/"+name, "")
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "<?xml"))
	}
}

func TestAnalyticsView(t *testing.T) {
	f := newFixture(t)
	f.backend.EXPECT().Turbines(gomock.Any(), gomock.Any()).Return(models.Collection[models.Turbine](nil), nil)
	f.backend.EXPECT().DailyMetrics(gomock.Any(), gomock.Any()).Return([]models.DailyMetric{
		{Date: "2024-05-01", Farm: models.AllFarms, TotalGeneration: 1000, AvgEfficiency: 90},
	}, nil)
	f.backend.EXPECT().GraphData(gomock.Any(), gomock.Any()).Return([]models.GraphPoint{
		{Date: "2024-05-01", Generation: 1000, Efficiency: 90},
	}, nil)

	rec := f.do(http.MethodPost, "/api/views/analytics/navigate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeView(t, rec)
	require.NotNil(t, p.Analytics)
	assert.InDelta(t, 90, p.Analytics.AvgEfficiency, 1e-9)
	assert.Equal(t, []string{"May 1"}, p.Analytics.Dates)
	assert.Equal(t, "M 40 25 L 60 25", p.Analytics.Generation.Line)
	assert.Len(t, p.Analytics.Efficiency.Labels, 5)
}

func TestRouteGroupsHaveSeparateLimits(t *testing.T) {
	f := newLimitedFixture(t, Options{RateLimit: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/charts/donut", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/charts/donut", "").Code)

	// charts drained their own bucket only
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/summary", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/api/summary", "").Code)
}
