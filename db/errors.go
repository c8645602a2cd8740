package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("db: record not found")

	// ErrDuplicateKey is returned on unique or primary key violations.
	ErrDuplicateKey = errors.New("db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("db: foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("db: check constraint violation")

	ErrDeadlock = errors.New("db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline or the
	// caller's context is cancelled.
	ErrTimeout = errors.New("db: query timeout")

	ErrConnectionFailed = errors.New("db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError
// ─────────────────────────────────────────────────────────────────────────────

// DBError pairs a sentinel with the driver error it was derived from.
// errors.Is matches the sentinel; errors.As still reaches the driver error
// through Unwrap.
type DBError struct {
	Sentinel error
	Cause    error
	// Constraint is the violated constraint name when the driver reports one.
	Constraint string
}

func (e *DBError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s on %s (cause: %v)", e.Sentinel, e.Constraint, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinels.
// Unrecognised errors are returned unchanged.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles lib/pq, pgx and go-sqlite3 errors.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	var pqe *pq.Error
	if errors.As(err, &pqe) {
		if mapped := mapByPGCode(string(pqe.Code), pqe.Constraint, err); mapped != nil {
			return mapped
		}
		return err
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		if mapped := mapByPGCode(pge.Code, pge.ConstraintName, err); mapped != nil {
			return mapped
		}
		return err
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		if mapped := mapSQLiteError(se, err); mapped != nil {
			return mapped
		}
	}
	return err
}

// mapByPGCode maps PostgreSQL SQLSTATE codes shared by lib/pq and pgx.
func mapByPGCode(code, constraint string, cause error) error {
	var sentinel error
	switch code {
	case "23505": // unique_violation
		sentinel = ErrDuplicateKey
	case "23503": // foreign_key_violation
		sentinel = ErrForeignKeyViolation
	case "23514": // check_violation
		sentinel = ErrCheckViolation
	case "40P01":
		sentinel = ErrDeadlock
	case "57014": // query_canceled
		sentinel = ErrTimeout
	case "08000", "08001", "08003", "08004", "08006", "08007", "08P01":
		sentinel = ErrConnectionFailed
	default:
		return nil
	}
	return &DBError{Sentinel: sentinel, Cause: cause, Constraint: constraint}
}

func mapSQLiteError(se sqlite3.Error, cause error) error {
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause, Constraint: sqliteConstraint(se)}
	case sqlite3.ErrConstraintForeignKey:
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case sqlite3.ErrConstraintCheck:
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause, Constraint: sqliteConstraint(se)}
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case sqlite3.ErrCantOpen:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return nil
}

// sqliteConstraint extracts "table.column" from messages such as
// "UNIQUE constraint failed: companies.handle".
func sqliteConstraint(se sqlite3.Error) string {
	msg := se.Error()
	if i := strings.LastIndex(msg, "failed: "); i >= 0 {
		return msg[i+len("failed: "):]
	}
	return ""
}

// ChainMapper tries each mapper in order and returns the first result that
// differs from the input.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
