// Package store provides SQL access to the LCIA database. It implements the
// scoring engine's DataSource and the catalogue lookups used by the CLI and
// the HTTP service, on either SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/fitscore/fitscore/internal/platform"
	"github.com/fitscore/fitscore/pkg/config"
	"github.com/fitscore/fitscore/pkg/lcia"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store wraps an sqlx handle on the LCIA schema.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	return New(db), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, driver: db.DriverName()}
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate() error {
	return platform.AutoMigrate(s.db.DB, s.driver)
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB { return s.db }

// Driver returns the driver name, "sqlite" or "postgres".
func (s *Store) Driver() string { return s.driver }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// in expands IN (?) clauses and rebinds the query for the driver.
func (s *Store) in(query string, args ...any) (string, []any, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand query: %w", err)
	}
	return s.db.Rebind(q), a, nil
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func notFound(err error, kind, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &lcia.NotFoundError{Kind: kind, Key: key}
	}
	return fmt.Errorf("select %s %s: %w", kind, key, err)
}
