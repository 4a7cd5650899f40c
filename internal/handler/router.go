package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urlshortener/backend/internal/middleware"
)

// RouterOptions configures NewRouter. Zero values disable the optional parts.
type RouterOptions struct {
	// CORSOrigins enables CORS handling for the listed origins.
	CORSOrigins []string

	// Registry receives HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the application's HTTP handler.
//
// Middleware order: RequestID → RealIP → SlogLogger → Metrics → Recoverer →
// GetHead → CORS. GetHead serves HEAD from the matching GET route.
// The recoverer sits inside the logger and metrics so a panic is still
// recorded as a 500. Unmatched paths, and known paths hit with the wrong
// method, fall through to NotFound. A nil log uses slog.Default.
func NewRouter(log *slog.Logger, srv *Server, opts RouterOptions) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	if opts.Registry != nil {
		r.Use(middleware.NewMetrics(opts.Registry))
	}
	r.Use(middleware.NewRecoverer(log))
	r.Use(chimiddleware.GetHead)
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(opts.CORSOrigins))
	}

	srv.Register(r)
	if opts.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{
			Registry: opts.Registry,
		}))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)
	return r
}
