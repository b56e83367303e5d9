//go:build integration
// +build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tejusbharadwaj/turbinewatch/internal/api"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
	server "github.com/tejusbharadwaj/turbinewatch/internal/grpc"
	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
	"github.com/tejusbharadwaj/turbinewatch/internal/render"
	"github.com/tejusbharadwaj/turbinewatch/internal/web"
)

const bufSize = 1024 * 1024

// fakeBackend serves the monitoring API from memory.
type fakeBackend struct {
	mu       sync.Mutex
	resolved map[int64]bool
	resolves int
}

func (b *fakeBackend) resolveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolves
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/farms":
		_, _ = io.WriteString(w, `[{"id":1,"name":"North Ridge","region":"West","location":"Ridge"},{"id":2,"name":"Bay","region":"East","location":"Coast"}]`)
	case r.URL.Path == "/api/turbines":
		if r.URL.Query().Get("page") != "" {
			_, _ = io.WriteString(w, `{"content":[{"id":1,"name":"T1","status":"ACTIVE","ratedPower":2.5}],"page":0,"size":1,"totalElements":3,"totalPages":3,"first":true,"last":false}`)
			return
		}
		_, _ = io.WriteString(w, `[
			{"id":1,"name":"T1","status":"ACTIVE","ratedPower":2.5,"farm":{"id":1,"name":"North Ridge","region":"West"}},
			{"id":2,"name":"T2","status":"ACTIVE","ratedPower":2.5,"farm":{"id":1,"name":"North Ridge","region":"West"}},
			{"id":3,"name":"T3","status":"OFFLINE","ratedPower":3.0,"farm":{"id":2,"name":"Bay","region":"East"}}
		]`)
	case r.URL.Path == "/api/health/alerts":
		var items []string
		for id, sev := range map[int64]string{10: "CRITICAL", 11: "LOW"} {
			if b.resolved[id] {
				continue
			}
			items = append(items, fmt.Sprintf(`{"id":%d,"turbine":{"id":%d},"severity":"%s","status":"ACTIVE","alertTime":"2024-05-01T10:00:00"}`, id, id-9, sev))
		}
		_, _ = io.WriteString(w, "["+strings.Join(items, ",")+"]")
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/health/alerts/"):
		var id int64
		_, _ = fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/api/health/alerts/"), "%d/resolve", &id)
		if b.resolved[id] || (id != 10 && id != 11) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b.resolved[id] = true
		b.resolves++
	case r.URL.Path == "/api/analytics/daily":
		_, _ = io.WriteString(w, `[{"date":"2024-05-01","farm":"All Farms","totalGeneration":1500,"avgEfficiency":82}]`)
	case r.URL.Path == "/api/analytics/graph":
		_, _ = io.WriteString(w, `[{"date":"2024-05-01","generation":1500,"efficiency":82},{"date":"2024-05-02","generation":1800,"efficiency":86}]`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type stack struct {
	backend *httptest.Server
	fake    *fakeBackend
	http    *httptest.Server
	health  grpc_health_v1.HealthClient
}

func setup(t *testing.T) *stack {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fake := &fakeBackend{resolved: map[int64]bool{}}
	backend := httptest.NewServer(fake)
	t.Cleanup(backend.Close)

	client := api.NewClient(api.Options{BaseURL: backend.URL + "/api", Timeout: 5 * time.Second}, logger)
	health := server.NewHealthChecker()
	store := fleet.NewStore()
	orch := orchestrator.New(client, store, orchestrator.NewState(10, 30), logger,
		orchestrator.WithConnectivityObserver(health.SetReachable))
	charts, err := render.New(store, 64)
	require.NoError(t, err)

	e := web.NewServer(web.NewHandler(orch, charts, logger), web.Options{RateLimit: 1000, RateLimitBurst: 1000}, logger)
	httpSrv := httptest.NewServer(e)
	t.Cleanup(httpSrv.Close)

	lis := bufconn.Listen(bufSize)
	grpcSrv := server.SetupServer(health, server.DefaultServerConfig(), logger)
	go func() { _ = grpcSrv.Serve(lis) }()
	t.Cleanup(grpcSrv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &stack{
		backend: backend,
		fake:    fake,
		http:    httpSrv,
		health:  grpc_health_v1.NewHealthClient(conn),
	}
}

func (s *stack) call(t *testing.T, method, path, body string) (int, web.ViewPayload) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.http.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var p web.ViewPayload
	if strings.HasPrefix(path, "/api/views") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	}
	return resp.StatusCode, p
}

func TestDashboardEndToEnd(t *testing.T) {
	s := setup(t)

	code, p := s.call(t, http.MethodPost, "/api/views/dashboard/navigate", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, p.Health)
	assert.Equal(t, 1, p.Health.Critical)
	assert.Equal(t, 1, p.Health.Warning)
	assert.Equal(t, 1, p.Health.Offline)
	assert.Equal(t, []string{"East", "West"}, p.Regions)
	assert.Equal(t, int64(2), p.Summary.ActiveAlerts)

	code, _ = s.call(t, http.MethodPost, "/api/alerts/10/resolve", "")
	assert.Equal(t, http.StatusNoContent, code)

	_, p = s.call(t, http.MethodGet, "/api/views/dashboard", "")
	assert.Equal(t, int64(1), p.Summary.ActiveAlerts)
	assert.Equal(t, 0, p.Health.Critical)

	code, _ = s.call(t, http.MethodPost, "/api/alerts/10/resolve", "")
	assert.Equal(t, http.StatusNotFound, code, "resolved elsewhere")
	assert.Equal(t, 1, s.fake.resolveCount())

	resp, err := http.Get(s.http.URL + "/charts/donut.svg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
}

func TestTurbinesPaged(t *testing.T) {
	s := setup(t)

	code, _ := s.call(t, http.MethodPost, "/api/views/turbines/navigate", "")
	require.Equal(t, http.StatusOK, code)

	code, p := s.call(t, http.MethodPut, "/api/views/turbines/size/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, p.TurbinePage.TotalPages)
	assert.Equal(t, int64(3), p.Summary.TotalTurbines)
	assert.Len(t, p.Turbines, 1)
}

func TestAnalyticsEndToEnd(t *testing.T) {
	s := setup(t)

	code, p := s.call(t, http.MethodPost, "/api/views/analytics/navigate", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, p.Analytics)
	assert.InDelta(t, 82, p.Analytics.AvgEfficiency, 1e-9)
	assert.Equal(t, []string{"May 1", "May 2"}, p.Analytics.Dates)
	assert.NotEmpty(t, p.Analytics.Generation.Line)

	code, _ = s.call(t, http.MethodPut, "/api/views/analytics/filters", `{"periodDays":0}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.call(t, http.MethodPut, "/api/views/analytics/filters", `{"periodDays":366}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBackendDownRaisesBannerAndHealth(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	code, _ := s.call(t, http.MethodPost, "/api/views/dashboard/navigate", "")
	require.Equal(t, http.StatusOK, code)

	s.backend.Close()

	code, p := s.call(t, http.MethodPost, "/api/views/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, orchestrator.Banner, p.Banner)

	for _, service := range []string{"", server.ServiceName} {
		resp, err := s.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status, "service %q", service)
	}
}
