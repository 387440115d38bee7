package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelabdash/homelabdash/internal/api"
	"github.com/homelabdash/homelabdash/internal/api/handler"
	"github.com/homelabdash/homelabdash/internal/api/middleware"
	"github.com/homelabdash/homelabdash/internal/api/models"
	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/dashboard"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/source/resilience"
)

// stateHolder lets a test move the server through the load phases.
type stateHolder struct {
	mu    sync.Mutex
	state source.LoadState
}

func (s *stateHolder) Get() source.LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stateHolder) Set(state source.LoadState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

const servicesDocument = `[
  {"id": 1, "name": "Router", "type": "Network", "url": "http://192.168.1.1", "status": "online", "notes": "Main lab router"},
  {"id": 2, "name": "NAS", "type": "Storage", "url": "http://192.168.1.20:5000", "status": "online", "notes": "Media and backups"},
  {"id": 3, "name": "Proxmox", "type": "Hypervisor", "url": "https://192.168.1.30:8006", "status": "online"},
  {"id": 4, "name": "Home Assistant", "type": "Automation", "url": "http://192.168.1.40:8123", "status": "maintenance"},
  {"id": 5, "name": "Pi-hole", "type": "DNS", "status": "offline", "notes": "Ad blocking DNS, currently down"}
]`

func writeConfigDir(t *testing.T, document string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services.json"), []byte(document), 0o600))
	return dir
}

func newTestRouter(t *testing.T, state source.LoadState, opts ...func(*api.RouterConfig)) (http.Handler, *stateHolder) {
	t.Helper()
	holder := &stateHolder{state: state}
	cfg := api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    zerolog.New(io.Discard),
		State:     holder.Get,
		ConfigDir: t.TempDir(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return api.NewRouter(cfg), holder
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return w
}

func loaded() source.LoadState {
	return source.Loaded(source.DefaultRecords())
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, source.Loading())

	w := get(router, "/v1/ops/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessFollowsLoad(t *testing.T) {
	router, holder := newTestRouter(t, source.Loading())

	w := get(router, "/v1/ops/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	holder.Set(loaded())
	w = get(router, "/v1/ops/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "loaded", health.Details["state"])

	holder.Set(source.Failed(source.FailureMessage))
	w = get(router, "/v1/ops/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusDegraded, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	registry := resilience.NewRegistry()
	resilience.NewClient(resilience.ClientConfig{Name: source.FetchedSourceName, Registry: registry})
	registry.RecordFailure(source.FetchedSourceName, fmt.Errorf("HTTP 404"))

	router, _ := newTestRouter(t, source.Failed(source.FailureMessage), func(cfg *api.RouterConfig) {
		cfg.Registry = registry
		cfg.Checks = []handler.Check{
			{Name: "postgres", Run: func(context.Context) error { return nil }},
		}
	})

	w := get(router, "/v1/ops/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

	assert.Equal(t, models.HealthStatusFail, status.Status)
	require.Len(t, status.Subsystems, 2)
	assert.Equal(t, "services", status.Subsystems[0].Name)
	assert.Equal(t, models.HealthStatusFail, status.Subsystems[0].Status)
	require.NotNil(t, status.Subsystems[0].Detail)
	assert.Equal(t, source.FailureMessage, *status.Subsystems[0].Detail)
	assert.Equal(t, "postgres", status.Subsystems[1].Name)
	assert.Equal(t, models.HealthStatusOK, status.Subsystems[1].Status)

	require.Len(t, status.Providers, 1)
	provider := status.Providers[0]
	assert.Equal(t, source.FetchedSourceName, provider.Provider)
	assert.Equal(t, models.HealthStatusDegraded, provider.Status)
	assert.Equal(t, "closed", provider.CircuitState)
	require.NotNil(t, provider.Message)
	assert.Equal(t, "HTTP 404", *provider.Message)
}

func TestRouter_SystemStatus_FailingCheck(t *testing.T) {
	router, _ := newTestRouter(t, loaded(), func(cfg *api.RouterConfig) {
		cfg.Checks = []handler.Check{
			{Name: "postgres", Run: func(context.Context) error { return fmt.Errorf("connection refused") }},
		}
	})

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(get(router, "/v1/ops/status").Body.Bytes(), &status))

	assert.Equal(t, models.HealthStatusFail, status.Status)
	require.Len(t, status.Subsystems, 2)
	assert.Equal(t, models.HealthStatusOK, status.Subsystems[0].Status)
	assert.Equal(t, models.HealthStatusFail, status.Subsystems[1].Status)
	assert.Empty(t, status.Providers)
}

func TestRouter_IndexLoading(t *testing.T) {
	router, _ := newTestRouter(t, source.Loading())

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	assert.Contains(t, body, dashboard.LoadingMessage)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="1">`)
	assert.NotContains(t, body, "cards-grid")
	assert.Contains(t, body, "<h1>Homelab Dashboard</h1>")
	assert.Contains(t, body, "Quick links &amp; status for lab")
}

func TestRouter_IndexLoaded(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	body := get(router, "/").Body.String()

	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.Equal(t, 5, strings.Count(body, `class="service-card"`))
	assert.Contains(t, body, `<span class="stat-value">5</span>`)
	assert.Contains(t, body, `<span class="stat-value">3</span>`)
	assert.Contains(t, body, "Main lab router")
	assert.Contains(t, body, `<span class="status-pill status-offline">offline</span>`)
	assert.Contains(t, body, `<a href="http://192.168.1.1" target="_blank" rel="noreferrer">http://192.168.1.1</a>`)
	assert.Contains(t, body, "<span>Not set</span>")
	assert.Contains(t, body, dashboard.NoNotes)
	assert.Contains(t, body, fmt.Sprintf("Homelab · %d", time.Now().Year()))
	assert.Contains(t, body, `<a class="filter-btn active" href="/">All</a>`)
}

func TestRouter_IndexOfflineFilter(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	body := get(router, "/?status=offline").Body.String()

	assert.Equal(t, 1, strings.Count(body, `class="service-card"`))
	assert.Contains(t, body, "Pi-hole")
	assert.NotContains(t, body, "<h2>Router</h2>")
	assert.Contains(t, body, `<span class="stat-value">5</span>`)
	assert.Contains(t, body, `<a class="filter-btn active" href="/?status=offline">Offline</a>`)
	assert.Contains(t, body, `<input type="hidden" name="status" value="offline">`)
}

func TestRouter_IndexSearchKeepsFilterLinks(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	body := get(router, "/?q=router").Body.String()

	assert.Equal(t, 1, strings.Count(body, `class="service-card"`))
	assert.Contains(t, body, `value="router"`)
	assert.Contains(t, body, `href="/?q=router&amp;status=offline"`)
	assert.NotContains(t, body, `name="status"`)
}

func TestRouter_IndexNoMatch(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	body := get(router, "/?q=zzz").Body.String()

	assert.Contains(t, body, dashboard.EmptyMessage)
	assert.NotContains(t, body, `class="service-card"`)
	assert.Contains(t, body, `<span class="stat-value">5</span>`)
}

func TestRouter_IndexFailed(t *testing.T) {
	router, _ := newTestRouter(t, source.Failed(source.FailureMessage))

	body := get(router, "/").Body.String()

	assert.Contains(t, body, source.FailureMessage)
	assert.NotContains(t, body, "cards-grid")
	assert.Equal(t, 4, strings.Count(body, `<span class="stat-value">0</span>`))
}

func TestRouter_IndexEscapesRecords(t *testing.T) {
	router, _ := newTestRouter(t, source.Loaded([]catalog.Record{
		{ID: "x", Name: "<script>alert(1)</script>", Type: "Evil", URL: "javascript:alert(1)", Status: "weird"},
	}))

	body := get(router, "/").Body.String()

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, `href="javascript:`)
	assert.Contains(t, body, `<span class="status-pill">weird</span>`)
}

func TestRouter_Stylesheet(t *testing.T) {
	router, _ := newTestRouter(t, source.Loading())

	w := get(router, "/static/app.css")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, w.Body.String(), ".status-pill")
}

func TestRouter_ServicesDocument(t *testing.T) {
	dir := writeConfigDir(t, servicesDocument)
	router, _ := newTestRouter(t, source.Loading(), func(cfg *api.RouterConfig) {
		cfg.ConfigDir = dir
	})

	w := get(router, source.ResourcePath)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, servicesDocument, w.Body.String())
}

func TestRouter_ServicesDocumentMissing(t *testing.T) {
	router, _ := newTestRouter(t, source.Loading())

	w := get(router, source.ResourcePath)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_ListServices(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	w := get(router, "/v1/services?status=online")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp models.ServicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, source.PhaseLoaded, resp.State)
	assert.Equal(t, catalog.FilterOnline, resp.Filter)
	assert.Equal(t, catalog.Counts{Total: 5, Online: 3, Offline: 1, Maintenance: 1}, resp.Stats)
	require.Len(t, resp.Services, 3)
	assert.Equal(t, "Router", resp.Services[0].Name)
	assert.Equal(t, "Proxmox", resp.Services[2].Name)
}

func TestRouter_ListServicesUnknownFilterMeansAll(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	var resp models.ServicesResponse
	require.NoError(t, json.Unmarshal(get(router, "/v1/services?status=bogus").Body.Bytes(), &resp))

	assert.Equal(t, catalog.FilterAll, resp.Filter)
	assert.Len(t, resp.Services, 5)
}

func TestRouter_ListServicesFailed(t *testing.T) {
	router, _ := newTestRouter(t, source.Failed(source.FailureMessage))

	var resp models.ServicesResponse
	require.NoError(t, json.Unmarshal(get(router, "/v1/services").Body.Bytes(), &resp))

	assert.Equal(t, source.PhaseFailed, resp.State)
	assert.Equal(t, source.FailureMessage, resp.Message)
	assert.Equal(t, catalog.Counts{}, resp.Stats)
	assert.Empty(t, resp.Services)
}

func TestRouter_ListServicesRateLimited(t *testing.T) {
	router, _ := newTestRouter(t, loaded(), func(cfg *api.RouterConfig) {
		cfg.RateLimit = middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute}
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(router, "/v1/services").Code)
	}

	w := get(router, "/v1/services")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// The page itself is not limited.
	assert.Equal(t, http.StatusOK, get(router, "/").Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	w := get(router, "/")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, middleware.ContentSecurityPolicy, w.Header().Get("Content-Security-Policy"))
}

func TestRouter_RequireTLS(t *testing.T) {
	router, _ := newTestRouter(t, loaded(), func(cfg *api.RouterConfig) {
		cfg.RequireTLS = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	w := get(router, "/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Equal(t, "/nope", problem.Instance)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, loaded())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/services", http.NoBody))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "method-not-allowed")
}

// The server serves its own services.json and the fetched source reads it
// back over HTTP, as in a normal deployment.
func TestRouter_FetchedSourceEndToEnd(t *testing.T) {
	dir := writeConfigDir(t, servicesDocument)
	registry := resilience.NewRegistry()

	holder := &stateHolder{state: source.Loading()}
	router := api.NewRouter(api.RouterConfig{
		Logger:    zerolog.New(io.Discard),
		State:     holder.Get,
		ConfigDir: dir,
		Registry:  registry,
	})
	server := httptest.NewServer(router)
	defer server.Close()

	loader := source.NewLoader(source.LoaderConfig{
		Source: source.NewFetched(source.FetchedConfig{BaseURL: server.URL, Registry: registry}),
		Logger: zerolog.New(io.Discard),
	})
	holder.Set(loader.Run(context.Background()))

	require.Equal(t, source.PhaseLoaded, holder.Get().Phase)

	body := get(router, "/?status=offline").Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="service-card"`))
	assert.Contains(t, body, "Pi-hole")

	health := registry.GetHealth(source.FetchedSourceName)
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}

func TestRouter_FetchedSourceMissingFile(t *testing.T) {
	holder := &stateHolder{state: source.Loading()}
	router := api.NewRouter(api.RouterConfig{
		Logger:    zerolog.New(io.Discard),
		State:     holder.Get,
		ConfigDir: t.TempDir(),
	})
	server := httptest.NewServer(router)
	defer server.Close()

	loader := source.NewLoader(source.LoaderConfig{
		Source: source.NewFetched(source.FetchedConfig{BaseURL: server.URL}),
		Logger: zerolog.New(io.Discard),
	})
	holder.Set(loader.Run(context.Background()))

	body := get(router, "/").Body.String()
	assert.Contains(t, body, source.FailureMessage)
	assert.Equal(t, 4, strings.Count(body, `<span class="stat-value">0</span>`))
}
