package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/urlshortener/backend/internal/database"
	"github.com/urlshortener/backend/internal/failure"
	"github.com/urlshortener/backend/internal/handler/gen"
)

// Acquirer hands out database leases. *database.Pool implements it.
type Acquirer interface {
	Acquire(ctx context.Context) (*database.Lease, error)
}

// errNoLease means an operation asked for a lease without WithConn in its
// middleware chain.
var errNoLease = errors.New("no database lease in request context")

// WithConn borrows a lease from pool before the body of each listed
// operation runs and returns it when the body finishes, however it finishes:
// normal return, error, panic, or the request context being cancelled.
// Operations not listed pass through untouched.
//
// If no connection can be acquired the body never runs and the request fails
// with a DatabaseFault; the acquisition error is logged, not sent.
func WithConn(pool Acquirer, operationIDs ...string) gen.StrictMiddlewareFunc {
	wanted := make(map[string]bool, len(operationIDs))
	for _, id := range operationIDs {
		wanted[id] = true
	}

	return func(next gen.StrictHandlerFunc, operationID string) gen.StrictHandlerFunc {
		if !wanted[operationID] {
			return next
		}
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request, request any) (any, error) {
			lease, err := pool.Acquire(ctx)
			if err != nil {
				return nil, failure.FromDatabase(err)
			}
			defer lease.Release()

			ctx = database.WithLease(ctx, lease)
			return next(ctx, w, r.WithContext(ctx), request)
		}
	}
}

// leaseFrom returns the lease WithConn placed in ctx.
func leaseFrom(ctx context.Context) (*database.Lease, error) {
	lease, ok := database.LeaseFrom(ctx)
	if !ok {
		return nil, failure.FromError(errNoLease)
	}
	return lease, nil
}
