package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlshortener/backend/internal/database"
	"github.com/urlshortener/backend/testutil"
)

func newPool(t *testing.T, capacity int32, timeout time.Duration) (*database.Pool, *testutil.FakeSource) {
	t.Helper()
	src := testutil.NewFakeSource(capacity)
	pool := database.New(src, database.Options{AcquireTimeout: timeout})
	t.Cleanup(pool.Close)
	return pool, src
}

func TestNew_appliesDefaultAcquireTimeout(t *testing.T) {
	pool, _ := newPool(t, 1, 0)
	assert.Equal(t, database.DefaultAcquireTimeout, pool.AcquireTimeout())
}

func TestAcquire_releaseReturnsConnection(t *testing.T) {
	pool, src := newPool(t, 2, time.Second)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.InUse())
	assert.EqualValues(t, 1, pool.Leased())

	lease.Release()

	assert.EqualValues(t, 0, src.InUse())
	assert.EqualValues(t, 0, pool.Leased())
	assert.True(t, lease.Released())
}

// TestLease_releaseIsIdempotent verifies the connection goes back exactly once
// however many times Release is called. The fake source panics on a second
// return of the same checkout.
func TestLease_releaseIsIdempotent(t *testing.T) {
	pool, src := newPool(t, 1, time.Second)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	require.NotPanics(t, func() {
		lease.Release()
		lease.Release()
		lease.Release()
	})
	assert.EqualValues(t, 1, src.Releases())
	assert.EqualValues(t, 0, pool.Leased())
}

func TestLease_sessionAfterReleaseFails(t *testing.T) {
	pool, _ := newPool(t, 1, time.Second)
	ctx := context.Background()

	lease, err := pool.Acquire(ctx)
	require.NoError(t, err)
	lease.Release()

	_, err = lease.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, database.ErrLeaseReleased)

	_, err = lease.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, database.ErrLeaseReleased)

	var n int
	assert.ErrorIs(t, lease.QueryRow(ctx, "SELECT 1").Scan(&n), database.ErrLeaseReleased)

	_, err = lease.Begin(ctx)
	assert.ErrorIs(t, err, database.ErrLeaseReleased)

	assert.ErrorIs(t, lease.Ping(ctx), database.ErrLeaseReleased)
	assert.True(t, database.IsPoolError(lease.Ping(ctx)))
}

func TestLease_delegatesToConnection(t *testing.T) {
	pool, src := newPool(t, 1, time.Second)
	pingErr := errors.New("server closed the connection unexpectedly")
	src.Ping = func(context.Context) error { return pingErr }

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	assert.ErrorIs(t, lease.Ping(context.Background()), pingErr)
}

func TestAcquire_timesOutWhenExhausted(t *testing.T) {
	pool, src := newPool(t, 1, 50*time.Millisecond)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	start := time.Now()
	lease, err := pool.Acquire(context.Background())

	require.Error(t, err)
	assert.Nil(t, lease)
	assert.ErrorIs(t, err, database.ErrAcquireTimeout)
	assert.True(t, database.IsPoolError(err))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.EqualValues(t, 1, src.InUse())
}

// TestAcquire_callerCancellation verifies that a caller giving up is reported
// as its own context error, not as a pool timeout.
func TestAcquire_callerCancellation(t *testing.T) {
	pool, _ := newPool(t, 1, time.Minute)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, database.ErrAcquireTimeout)
}

func TestAcquire_afterClose(t *testing.T) {
	pool, _ := newPool(t, 1, time.Second)
	pool.Close()

	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, database.ErrPoolClosed)

	require.NotPanics(t, pool.Close, "Close must be idempotent")
}

// TestAcquire_noLeakUnderContention runs more concurrent borrowers than the
// pool has connections. In-use never exceeds capacity and everything is
// returned at the end.
func TestAcquire_noLeakUnderContention(t *testing.T) {
	const (
		capacity = 3
		workers  = 40
	)
	pool, src := newPool(t, capacity, 5*time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := pool.Acquire(context.Background())
			if err != nil {
				errs <- err
				return
			}
			defer lease.Release()
			time.Sleep(2 * time.Millisecond)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected acquire error: %v", err)
	}
	assert.LessOrEqual(t, src.MaxInUse(), int32(capacity))
	assert.EqualValues(t, 0, src.InUse())
	assert.EqualValues(t, 0, pool.Leased())
	assert.EqualValues(t, workers, src.Releases())
}

func TestPool_Stat(t *testing.T) {
	pool, _ := newPool(t, 4, time.Second)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	st := pool.Stat()
	assert.EqualValues(t, 4, st.MaxConns)
	assert.EqualValues(t, 1, st.AcquiredConns)
	assert.EqualValues(t, 1, st.TotalConns)
	assert.EqualValues(t, 1, st.AcquireCount)
}

func TestPool_Ping(t *testing.T) {
	pool, src := newPool(t, 1, time.Second)

	require.NoError(t, pool.Ping(context.Background()))
	assert.EqualValues(t, 0, src.InUse(), "ping lease must be returned")

	src.Ping = func(context.Context) error { return errors.New("connection refused") }
	require.Error(t, pool.Ping(context.Background()))
	assert.EqualValues(t, 0, src.InUse())
}

func TestLeaseFrom(t *testing.T) {
	pool, _ := newPool(t, 1, time.Second)

	_, ok := database.LeaseFrom(context.Background())
	assert.False(t, ok)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	got, ok := database.LeaseFrom(database.WithLease(context.Background(), lease))
	require.True(t, ok)
	assert.Same(t, lease, got)
}
