// Package handler implements the HTTP handlers for the URL shortener API.
// All API operations are methods on Server, which implements
// gen.StrictServerInterface generated from spec/openapi.yaml.
// Methods are split into files by concern (health.go, docs.go) but all share
// the same Server struct so they can access its dependencies.
package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/urlshortener/backend/internal/handler/gen"
)

// connOperations run behind WithConn.
var connOperations = []string{"GetReady"}

var _ gen.StrictServerInterface = (*Server)(nil)

// Server implements gen.StrictServerInterface for all API endpoints.
type Server struct {
	log  *slog.Logger
	pool Acquirer
}

// NewServer constructs the Server. pool backs every operation in
// connOperations.
func NewServer(log *slog.Logger, pool Acquirer) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, pool: pool}
}

// Register mounts the docs and every generated operation on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", GetDocs)
	r.Get("/openapi.yaml", GetOpenAPI)

	gen.HandlerWithOptions(
		NewStrictHandler(s.log, s, WithConn(s.pool, connOperations...)),
		gen.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: RequestError(s.log),
		},
	)
}
