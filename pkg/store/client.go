// Package store is Eidetic's durable per-project state: evidence,
// propositions, interviews, and interview scripts, addressed by project id
// and mutated only through Commit's atomic diff application.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/shipaleks/eidetic/pkg/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Store wraps a pgx connection pool and provides the Load/Commit contract
// spec.md §4.1 requires: key-addressable by project id, atomic commit, no
// observable tearing between collections. There is no separate next-id
// call: Commit advances the project's id counters in its own transaction.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres, runs any pending embedded migrations, and
// returns a ready-to-use Store.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if err := runMigrations(ctx, cfg.DSN); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// runMigrations applies every embedded *.sql file under migrations/ via
// golang-migrate, exactly as the teacher's pkg/database/migrations.go embeds
// and applies migrations/*.sql: open a short-lived database/sql connection
// through the pgx stdlib driver, hand it to golang-migrate's postgres
// driver, and apply all pending steps.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return &MigrationError{Step: "open", Err: err}
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return &MigrationError{Step: "ping", Err: err}
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return &MigrationError{Step: "open embedded source", Err: err}
	}
	defer sourceDriver.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return &MigrationError{Step: "create postgres driver", Err: err}
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "eidetic", dbDriver)
	if err != nil {
		return &MigrationError{Step: "create migrate instance", Err: err}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return &MigrationError{Step: "apply", Err: err}
	}
	return nil
}
