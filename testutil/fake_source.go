package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"

	"github.com/urlshortener/backend/internal/database"
)

// ErrUnsupported is returned by fake connection methods that have no
// scripted behaviour.
var ErrUnsupported = errors.New("testutil: not supported by fake connection")

// FakeSource is an in-memory database.Source with a fixed capacity, backed by
// a puddle pool so acquisition blocks and cancels exactly like pgxpool.
// Set the hook fields before the source is used.
type FakeSource struct {
	// Ping, when set, is called by every connection's Ping.
	Ping func(ctx context.Context) error
	// Exec, when set, is called by every connection's Exec.
	Exec func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	pool *puddle.Pool[*fakeConn]

	mu          sync.Mutex
	maxAcquired int32
	releases    int64
}

// NewFakeSource returns a FakeSource that hands out at most capacity
// connections at a time. It panics if capacity < 1.
func NewFakeSource(capacity int32) *FakeSource {
	s := &FakeSource{}
	pool, err := puddle.NewPool(&puddle.Config[*fakeConn]{
		Constructor: func(context.Context) (*fakeConn, error) {
			return &fakeConn{src: s}, nil
		},
		Destructor: func(*fakeConn) {},
		MaxSize:    capacity,
	})
	if err != nil {
		panic("testutil.NewFakeSource: " + err.Error())
	}
	s.pool = pool
	return s
}

// Acquire implements database.Source.
func (s *FakeSource) Acquire(ctx context.Context) (database.Conn, error) {
	res, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	acquired := s.pool.Stat().AcquiredResources()
	s.mu.Lock()
	if acquired > s.maxAcquired {
		s.maxAcquired = acquired
	}
	s.mu.Unlock()

	return &leasedConn{fakeConn: res.Value(), res: res}, nil
}

// Stat implements database.Source.
func (s *FakeSource) Stat() database.Stat {
	st := s.pool.Stat()
	return database.Stat{
		MaxConns:             st.MaxResources(),
		AcquiredConns:        st.AcquiredResources(),
		IdleConns:            st.IdleResources(),
		TotalConns:           st.TotalResources(),
		AcquireCount:         st.AcquireCount(),
		CanceledAcquireCount: st.CanceledAcquireCount(),
		EmptyAcquireCount:    st.EmptyAcquireCount(),
		AcquireDuration:      st.AcquireDuration(),
	}
}

// Close implements database.Source.
func (s *FakeSource) Close() {
	s.pool.Close()
}

// InUse reports how many connections are currently checked out.
func (s *FakeSource) InUse() int32 {
	return s.pool.Stat().AcquiredResources()
}

// MaxInUse reports the highest number of connections ever checked out at once.
func (s *FakeSource) MaxInUse() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxAcquired
}

// Releases reports how many times a connection has been returned.
func (s *FakeSource) Releases() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

// fakeConn is the pooled value; leasedConn binds it to its puddle resource
// for one checkout.
type fakeConn struct {
	src *FakeSource
}

type leasedConn struct {
	*fakeConn
	res *puddle.Resource[*fakeConn]
}

// Release panics (inside puddle) if the same checkout is released twice.
func (c *leasedConn) Release() {
	c.src.mu.Lock()
	c.src.releases++
	c.src.mu.Unlock()
	c.res.Release()
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if c.src.Exec != nil {
		return c.src.Exec(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrUnsupported
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, ErrUnsupported
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

func (c *fakeConn) Begin(context.Context) (pgx.Tx, error) {
	return nil, ErrUnsupported
}

func (c *fakeConn) Ping(ctx context.Context) error {
	if c.src.Ping != nil {
		return c.src.Ping(ctx)
	}
	return nil
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrUnsupported }
