// Package db is a thin, SQL-first layer over database/sql. It adds
// context-aware helpers, statement hooks (logging, metrics), driver error
// mapping and transaction management. All SQL stays explicit in the callers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "pgx", "postgres" or "sqlite3".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default query timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// Hooks executed around every statement. Nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB. Every method takes a
// context so callers control timeouts and cancellation.
type DB struct {
	exec  executor
	sqldb *sql.DB
	cfg   Config
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Callers are responsible for calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("db: DriverName must not be empty")
	}

	sqldb, err := sql.Open(sqlDriverName(cfg.DriverName), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	d := wrap(sqldb, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return d, nil
}

// New wraps an already opened *sql.DB, applying the pool settings and hooks
// from cfg. DSN and DriverName are ignored. Used with sqlmock in tests.
func New(sqldb *sql.DB, cfg Config) *DB { return wrap(sqldb, cfg) }

func wrap(sqldb *sql.DB, cfg Config) *DB {
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return &DB{
		exec: executor{
			conn:    sqldb,
			hooks:   newHookChain(cfg.Hooks),
			errMap:  DefaultErrorMapper(),
			timeout: cfg.DefaultTimeout,
		},
		sqldb: sqldb,
		cfg:   cfg,
	}
}

// Raw returns the underlying *sql.DB (used by the migration runner).
func (d *DB) Raw() *sql.DB { return d.sqldb }

// SetErrorMapper replaces the default error mapper.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.exec.errMap = m }

// Close closes all pooled connections. Safe to call multiple times.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (d *DB) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, d.cfg.DefaultTimeout)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (d *DB) mapErr(err error) error { return d.exec.mapErr(err) }
