package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlshortener/backend/internal/database"
	"github.com/urlshortener/backend/internal/handler"
	"github.com/urlshortener/backend/internal/middleware"
	"github.com/urlshortener/backend/testutil"
)

// TestRouter_notFoundFallback verifies an unmatched path gets the 404
// envelope echoing the request URI.
func TestRouter_notFoundFallback(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := e.get("/nonexistent")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"code":404,"reason":"Not Found","message":"Request path Not Found: /nonexistent"}`,
		rec.Body.String())
	assert.Empty(t, e.errorLogs(t), "the fallback is never logged at error level")
}

func TestRouter_notFoundKeepsQuery(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := e.get("/abc123?utm_source=mail")

	assert.Contains(t, rec.Body.String(), "Request path Not Found: /abc123?utm_source=mail")
}

func TestRouter_wrongMethodFallsBack(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request path Not Found: /healthz")
}

// TestRouter_headServedByGetRoute verifies HEAD reaches the GET route, as
// the CORS configuration advertises.
func TestRouter_headServedByGetRoute(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Request path Not Found")
}

func TestRouter_setsRequestID(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := e.get("/healthz")

	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_metricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := database.New(testutil.NewFakeSource(1), database.Options{})
	defer pool.Close()
	r := handler.NewRouter(nil, handler.NewServer(nil, pool), handler.RouterOptions{Registry: reg})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRouter_corsEnabled(t *testing.T) {
	pool := database.New(testutil.NewFakeSource(1), database.Options{})
	defer pool.Close()
	r := handler.NewRouter(nil, handler.NewServer(nil, pool), handler.RouterOptions{
		CORSOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetDocs(t *testing.T) {
	e := newEnv(t, 1, database.Options{})

	rec := e.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-url="/openapi.yaml"`)

	rec = e.get("/openapi.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/readyz")
}
