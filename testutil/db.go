// Package testutil provides shared helpers for tests.
// Helpers that need Postgres skip automatically when TEST_DATABASE_URL is not
// set, so unit tests can run without a running database.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/urlshortener/backend/internal/database"
)

// NewPool opens a *database.Pool connected to the database specified by the
// TEST_DATABASE_URL environment variable.
//
// The test is skipped automatically if TEST_DATABASE_URL is not set, so
// integration tests are opt-in and never break CI environments that lack a DB.
// The pool is closed automatically when the test (and all its subtests) finish.
func NewPool(t *testing.T, opts database.Options) *database.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := database.Open(context.Background(), dsn, opts)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// requireDSN returns the TEST_DATABASE_URL environment variable value,
// skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
