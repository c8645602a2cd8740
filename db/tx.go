package db

import (
	"context"
	"database/sql"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tx: transaction wrapper
// ─────────────────────────────────────────────────────────────────────────────

// Tx mirrors the DB API so repositories can run against either through the
// Querier interface. Statements inside a transaction run under the
// transaction's context; no per-statement default timeout is applied.
type Tx struct {
	exec  executor
	sqltx *sql.Tx
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.exec.exec(ctx, query, args)
}

// Query executes a query returning rows. The caller MUST close the Rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	return t.exec.query(ctx, query, args)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	return t.exec.queryRow(ctx, query, args)
}

// ─────────────────────────────────────────────────────────────────────────────
// ExecTx
// ─────────────────────────────────────────────────────────────────────────────

// TxOptions configures isolation level and the read-only flag.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// ExecTx starts a transaction, runs fn, and commits on success or rolls back
// on error or panic. Nested transactions are not supported.
//
//	err := d.ExecTx(ctx, func(tx *db.Tx) error {
//	    c, err := repo.NewCompanyRepository(tx).Get(ctx, handle)
//	    if err != nil {
//	        return err
//	    }
//	    jobs, err := repo.NewJobRepository(tx).ListByCompany(ctx, c.Handle)
//	    ...
//	}, db.TxOptions{ReadOnly: true})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) (err error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()

	var sqlOpts *sql.TxOptions
	if len(opts) > 0 {
		sqlOpts = &sql.TxOptions{
			Isolation: opts[0].Isolation,
			ReadOnly:  opts[0].ReadOnly,
		}
	}

	sqltx, err := d.sqldb.BeginTx(ctx, sqlOpts)
	if err != nil {
		return d.mapErr(err)
	}

	tx := &Tx{
		exec:  executor{conn: sqltx, hooks: d.exec.hooks, errMap: d.exec.errMap},
		sqltx: sqltx,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return d.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Querier
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the interface shared by *DB and *Tx. Repositories accept it so
// they work unchanged inside transactions.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
