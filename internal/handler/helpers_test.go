package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urlshortener/backend/internal/database"
	"github.com/urlshortener/backend/internal/handler"
	"github.com/urlshortener/backend/internal/handler/gen"
	"github.com/urlshortener/backend/testutil"
)

// env bundles a router over a fake pool with a captured JSON log.
type env struct {
	src    *testutil.FakeSource
	pool   *database.Pool
	logs   *bytes.Buffer
	logger *slog.Logger
	router http.Handler
}

func newEnv(t *testing.T, capacity int32, opts database.Options) *env {
	t.Helper()
	src := testutil.NewFakeSource(capacity)
	pool := database.New(src, opts)
	t.Cleanup(pool.Close)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return &env{
		src:    src,
		pool:   pool,
		logs:   &logs,
		logger: logger,
		router: handler.NewRouter(logger, handler.NewServer(logger, pool), handler.RouterOptions{}),
	}
}

func (e *env) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// logsAt returns the records written so far at level ("DEBUG", "ERROR", ...).
func (e *env) logsAt(t *testing.T, level string) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(e.logs.Bytes()))
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		if entry["level"] == level {
			out = append(out, entry)
		}
	}
	return out
}

func (e *env) errorLogs(t *testing.T) []map[string]any {
	t.Helper()
	return e.logsAt(t, "ERROR")
}

// stubAPI implements gen.StrictServerInterface with replaceable bodies.
// A nil body answers {"status":"ok"}.
type stubAPI struct {
	health func(ctx context.Context) (gen.GetHealthResponseObject, error)
	ready  func(ctx context.Context) (gen.GetReadyResponseObject, error)
}

func (s stubAPI) GetHealth(ctx context.Context, _ gen.GetHealthRequestObject) (gen.GetHealthResponseObject, error) {
	if s.health == nil {
		return gen.GetHealth200JSONResponse{Status: "ok"}, nil
	}
	return s.health(ctx)
}

func (s stubAPI) GetReady(ctx context.Context, _ gen.GetReadyRequestObject) (gen.GetReadyResponseObject, error) {
	if s.ready == nil {
		return gen.GetReady200JSONResponse{Status: "ok"}, nil
	}
	return s.ready(ctx)
}

// mount serves api through the generated routes the way Server.Register does.
func mount(logger *slog.Logger, api gen.StrictServerInterface, middlewares ...gen.StrictMiddlewareFunc) http.Handler {
	return gen.Handler(handler.NewStrictHandler(logger, api, middlewares...))
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}
