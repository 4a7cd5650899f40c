// Package database owns the shared Postgres connection pool and the
// request-scoped leases handlers use to talk to it.
//
// A Pool is built once at startup (Open) and closed at shutdown. Handlers
// never touch the Pool directly: they receive a Lease, which holds exactly one
// connection until Release returns it.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Defaults applied by Options.withDefaults.
const (
	DefaultMaxConns        = 10
	DefaultAcquireTimeout  = 5 * time.Second
	DefaultMaxConnLifetime = 30 * time.Minute
)

var (
	// ErrAcquireTimeout is returned when no connection became free within the
	// pool's acquisition timeout.
	ErrAcquireTimeout = errors.New("timed out waiting for a database connection")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("database pool is closed")

	// ErrLeaseReleased is returned by session calls on a released Lease.
	ErrLeaseReleased = errors.New("database lease already released")
)

// IsPoolError reports whether err originated in this package's pool or
// lease handling.
func IsPoolError(err error) bool {
	return errors.Is(err, ErrAcquireTimeout) ||
		errors.Is(err, ErrPoolClosed) ||
		errors.Is(err, ErrLeaseReleased)
}

// Session is the set of database operations available through a Lease.
// *pgxpool.Conn satisfies it.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Conn is a connection checked out of a Source.
type Conn interface {
	Session
	// Release returns the connection to its Source. Called exactly once.
	Release()
}

// Source is the pool backend a Pool draws connections from.
// Acquire blocks until a connection is free or ctx is done.
type Source interface {
	Acquire(ctx context.Context) (Conn, error)
	Stat() Stat
	Close()
}

// Stat is a point-in-time snapshot of pool usage.
type Stat struct {
	MaxConns             int32
	AcquiredConns        int32
	IdleConns            int32
	TotalConns           int32
	AcquireCount         int64
	CanceledAcquireCount int64
	EmptyAcquireCount    int64
	AcquireDuration      time.Duration
}

// Options configures a Pool. Zero fields take the package defaults.
type Options struct {
	MaxConns        int32
	AcquireTimeout  time.Duration
	MaxConnLifetime time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = DefaultAcquireTimeout
	}
	if o.MaxConnLifetime <= 0 {
		o.MaxConnLifetime = DefaultMaxConnLifetime
	}
	return o
}

// Pool hands out Leases over a Source. It is safe for concurrent use and is
// shared by pointer; copying a *Pool is the cheap handle clone.
type Pool struct {
	src            Source
	acquireTimeout time.Duration
	closed         atomic.Bool
	leased         atomic.Int64
}

// New builds a Pool over src.
func New(src Source, opts Options) *Pool {
	opts = opts.withDefaults()
	return &Pool{src: src, acquireTimeout: opts.AcquireTimeout}
}

// AcquireTimeout returns the maximum time Acquire waits for a connection.
func (p *Pool) AcquireTimeout() time.Duration {
	return p.acquireTimeout
}

// Acquire checks a connection out of the pool and wraps it in a Lease.
// It waits at most the pool's acquisition timeout, or until ctx is done if
// that comes first. The caller must Release the lease.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("database.Pool.Acquire: %w", ErrPoolClosed)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.src.Acquire(acquireCtx)
	if err != nil {
		// Distinguish our own deadline from the caller giving up.
		if ctx.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("database.Pool.Acquire: %w (after %s)", ErrAcquireTimeout, p.acquireTimeout)
		}
		return nil, fmt.Errorf("database.Pool.Acquire: %w", err)
	}

	p.leased.Add(1)
	return newLease(p, conn), nil
}

// Leased reports how many leases are currently held.
func (p *Pool) Leased() int64 {
	return p.leased.Load()
}

// Stat returns the underlying source's usage snapshot.
func (p *Pool) Stat() Stat {
	return p.src.Stat()
}

// Ping checks that the database is reachable through a short-lived lease.
func (p *Pool) Ping(ctx context.Context) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return lease.Ping(ctx)
}

// Close rejects further Acquire calls with ErrPoolClosed and shuts the source
// down. The pgx source blocks until every held lease has been released.
func (p *Pool) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.src.Close()
	}
}
