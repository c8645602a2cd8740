package db

import (
	"context"
	"database/sql"
	"time"
)

// conn is the statement surface shared by *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// executor runs statements with hooks and error mapping. DB and Tx both
// delegate to one; only the pool-level executor applies a default timeout.
type executor struct {
	conn    conn
	hooks   hookChain
	errMap  ErrorMapper
	timeout time.Duration
}

func (e *executor) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	e.hooks.Before(ctx, query, args)
	res, err := e.conn.ExecContext(ctx, query, args...)
	err = e.mapErr(err)
	e.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

func (e *executor) query(ctx context.Context, query string, args []any) (*Rows, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)

	start := time.Now()
	e.hooks.Before(ctx, query, args)
	rows, err := e.conn.QueryContext(ctx, query, args...)
	err = e.mapErr(err)
	e.hooks.After(ctx, query, args, time.Since(start), err)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{raw: rows, errMap: e.errMap, cancel: cancel}, nil
}

// queryRow defers the After hook to Row.Scan, where the outcome is known.
// A Row that is never scanned is never reported.
func (e *executor) queryRow(ctx context.Context, query string, args []any) *Row {
	ctx, cancel := withTimeout(ctx, e.timeout)

	start := time.Now()
	e.hooks.Before(ctx, query, args)
	raw := e.conn.QueryRowContext(ctx, query, args...)
	return &Row{
		raw:    raw,
		errMap: e.errMap,
		done: func(err error) {
			e.hooks.After(ctx, query, args, time.Since(start), err)
			cancel()
		},
	}
}

func (e *executor) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return e.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Pool-level statements
// ─────────────────────────────────────────────────────────────────────────────

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.exec.exec(ctx, query, args)
}

// Query executes a query that returns rows. The caller MUST close the
// returned Rows; the default timeout (if any) stays armed until then.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	return d.exec.query(ctx, query, args)
}

// QueryRow executes a query expected to return at most one row.
// Scan on the returned Row yields ErrNotFound when nothing matched.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	return d.exec.queryRow(ctx, query, args)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row / Rows
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
	done   func(err error)
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	err := r.errMap.Map(r.raw.Scan(dest...))
	r.done(err)
	return err
}

// Rows wraps *sql.Rows so iteration errors go through the same mapper.
type Rows struct {
	raw    *sql.Rows
	errMap ErrorMapper
	cancel context.CancelFunc
}

func (r *Rows) Next() bool             { return r.raw.Next() }
func (r *Rows) Scan(dest ...any) error { return r.errMap.Map(r.raw.Scan(dest...)) }
func (r *Rows) Err() error             { return r.errMap.Map(r.raw.Err()) }

// Close releases the result set and the query's default timeout.
func (r *Rows) Close() error {
	defer r.cancel()
	return r.raw.Close()
}
