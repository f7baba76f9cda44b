// Package storetest provides a testcontainers-backed Postgres fixture for
// pkg/store's integration tests, grounded on the teacher's
// test/database.NewTestClient helper.
package storetest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/store"
)

// NewTestStore opens a *store.Store against either CI_DATABASE_URL (CI mode)
// or a freshly started testcontainer (local dev mode), applying the
// embedded migrations exactly as production startup does. The
// container/pool is cleaned up automatically when the test ends.
func NewTestStore(t *testing.T) *store.Store {
	ctx := context.Background()

	dsn := os.Getenv("CI_DATABASE_URL")
	if dsn == "" {
		t.Log("Using testcontainers for PostgreSQL")
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("eidetic_test"),
			postgres.WithUsername("eidetic"),
			postgres.WithPassword("eidetic"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		require.NoError(t, err)
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		})

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
		dsn = connStr
	} else {
		t.Log("Using CI_DATABASE_URL for PostgreSQL")
	}

	st, err := store.Open(ctx, config.StoreConfig{DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err)

	t.Cleanup(st.Close)

	return st
}
