package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open builds the shared Pool over a pgxpool connected to databaseURL and
// verifies the database is reachable. The connection attempt is bounded by
// the acquisition timeout; any failure here is fatal to startup.
func Open(ctx context.Context, databaseURL string, opts Options) (*Pool, error) {
	opts = opts.withDefaults()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("database.Open: parse url: %w", err)
	}
	cfg.MaxConns = opts.MaxConns
	cfg.MaxConnLifetime = opts.MaxConnLifetime

	// pgxpool.NewWithConfig does not dial; the first Acquire does.
	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database.Open: create pool: %w", err)
	}

	pool := New(&pgxSource{pool: pgPool}, opts)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database.Open: ping: %w", err)
	}
	return pool, nil
}

// pgxSource adapts *pgxpool.Pool to Source.
type pgxSource struct {
	pool *pgxpool.Pool
}

func (s *pgxSource) Acquire(ctx context.Context) (Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *pgxSource) Stat() Stat {
	st := s.pool.Stat()
	return Stat{
		MaxConns:             st.MaxConns(),
		AcquiredConns:        st.AcquiredConns(),
		IdleConns:            st.IdleConns(),
		TotalConns:           st.TotalConns(),
		AcquireCount:         st.AcquireCount(),
		CanceledAcquireCount: st.CanceledAcquireCount(),
		EmptyAcquireCount:    st.EmptyAcquireCount(),
		AcquireDuration:      st.AcquireDuration(),
	}
}

func (s *pgxSource) Close() {
	s.pool.Close()
}
