package handler

import (
	"context"

	"github.com/urlshortener/backend/internal/failure"
	"github.com/urlshortener/backend/internal/handler/gen"
)

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the process is serving.
// It does not touch the database.
func (s *Server) GetHealth(ctx context.Context, _ gen.GetHealthRequestObject) (gen.GetHealthResponseObject, error) {
	return gen.GetHealth200JSONResponse{Status: "ok"}, nil
}

// GetReady handles GET /readyz.
// It runs behind WithConn, so reaching the body proves a connection could be
// acquired; it then pings the database over the leased connection.
func (s *Server) GetReady(ctx context.Context, _ gen.GetReadyRequestObject) (gen.GetReadyResponseObject, error) {
	lease, err := leaseFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := lease.Ping(ctx); err != nil {
		return nil, failure.FromDatabase(err)
	}
	return gen.GetReady200JSONResponse{Status: "ok"}, nil
}
