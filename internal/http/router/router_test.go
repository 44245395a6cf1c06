package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "naql_backend/internal/http"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	secret string
}

func (c testConfig) GetHTTPAddr() string        { return ":0" }
func (c testConfig) GetCORSAllowAll() bool      { return false }
func (c testConfig) GetCORSOrigins() []string   { return []string{"https://naql.example.sa"} }
func (c testConfig) GetCORSAllowCreds() bool    { return false }
func (c testConfig) GetJWTAccessSecret() string { return c.secret }
func (c testConfig) IsAdminAuthEnabled() bool   { return c.secret != "" }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	rc.Diagnostics.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "diag") })
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(cfg testConfig, health apphttp.HealthChecker) *gin.Engine {
	return New(&apphttp.App{
		Config:  cfg,
		Logger:  logger.Discard(),
		Metrics: metrics.New(),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func get(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ok := get(newEngine(testConfig{}, nil), "/api/health", nil)
	require.Equal(t, http.StatusOK, ok.Code)
	require.Contains(t, ok.Body.String(), `"ok"`)

	down := newEngine(testConfig{}, pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))
	w := get(down, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "degraded")
	require.NotContains(t, w.Body.String(), "dial tcp")
}

func TestModulesAndMetricsAreMounted(t *testing.T) {
	engine := newEngine(testConfig{}, nil)

	w := get(engine, "/api/v1/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.Equal(t, http.StatusOK, get(engine, "/api/v1/diagnostics/ping", nil).Code)

	m := get(engine, "/metrics", nil)
	require.Equal(t, http.StatusOK, m.Code)
	require.Contains(t, m.Body.String(), "http_requests_total")
}

func TestDiagnosticsRequireAdminWhenSecretSet(t *testing.T) {
	engine := newEngine(testConfig{secret: "s3cret"}, nil)

	require.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/diagnostics/ping", nil).Code)
	require.Equal(t, http.StatusOK, get(engine, "/api/v1/ping", nil).Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newEngine(testConfig{}, nil)

	w := get(engine, "/api/v1/ping", map[string]string{"Origin": "https://naql.example.sa"})
	require.Equal(t, "https://naql.example.sa", w.Header().Get("Access-Control-Allow-Origin"))
}
