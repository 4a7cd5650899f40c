package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Lease is exclusive use of one pooled connection for the length of a
// request. It must not be shared between goroutines while held.
//
// Every session method fails with ErrLeaseReleased once Release has run.
type Lease struct {
	pool *Pool
	conn Conn

	mu       sync.Mutex
	released bool
}

func newLease(p *Pool, conn Conn) *Lease {
	return &Lease{pool: p, conn: conn}
}

// Release returns the connection to the pool. It is safe to call more than
// once; only the first call has an effect.
func (l *Lease) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return
	}
	l.released = true
	l.conn.Release()
	l.pool.leased.Add(-1)
}

// Released reports whether Release has been called.
func (l *Lease) Released() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

func (l *Lease) session() (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil, ErrLeaseReleased
	}
	return l.conn, nil
}

// Exec runs sql on the leased connection.
func (l *Lease) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s, err := l.session()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("database.Lease.Exec: %w", err)
	}
	return s.Exec(ctx, sql, args...)
}

// Query runs sql on the leased connection and returns its rows.
func (l *Lease) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s, err := l.session()
	if err != nil {
		return nil, fmt.Errorf("database.Lease.Query: %w", err)
	}
	return s.Query(ctx, sql, args...)
}

// QueryRow runs sql on the leased connection and returns at most one row.
func (l *Lease) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s, err := l.session()
	if err != nil {
		return errRow{err: fmt.Errorf("database.Lease.QueryRow: %w", err)}
	}
	return s.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the leased connection. The transaction must
// finish before the lease is released.
func (l *Lease) Begin(ctx context.Context) (pgx.Tx, error) {
	s, err := l.session()
	if err != nil {
		return nil, fmt.Errorf("database.Lease.Begin: %w", err)
	}
	return s.Begin(ctx)
}

// Ping checks the leased connection is alive.
func (l *Lease) Ping(ctx context.Context) error {
	s, err := l.session()
	if err != nil {
		return fmt.Errorf("database.Lease.Ping: %w", err)
	}
	return s.Ping(ctx)
}

// errRow is a pgx.Row whose Scan always fails.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

type leaseKey struct{}

// WithLease returns a copy of ctx carrying lease.
func WithLease(ctx context.Context, lease *Lease) context.Context {
	return context.WithValue(ctx, leaseKey{}, lease)
}

// LeaseFrom returns the lease stored in ctx by WithLease.
func LeaseFrom(ctx context.Context) (*Lease, bool) {
	lease, ok := ctx.Value(leaseKey{}).(*Lease)
	return lease, ok && lease != nil
}
