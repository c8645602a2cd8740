package repo

import (
	"errors"
	"fmt"

	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// Error kinds
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when the addressed company or job does not exist.
	ErrNotFound = errors.New("repo: not found")

	// ErrAlreadyExists is returned when a create collides with an existing row.
	ErrAlreadyExists = errors.New("repo: already exists")

	// ErrStorage is returned for any other storage failure. The driver error
	// is kept as the cause.
	ErrStorage = errors.New("repo: storage fault")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsStorage(err error) bool       { return errors.Is(err, ErrStorage) }

// IsValidation reports whether err was caused by bad caller input, such as an
// empty update, an unknown filter or a reference to a missing company.
func IsValidation(err error) bool { return errors.Is(err, sqlbuild.ErrInvalid) }

// Error carries the failed operation, the resource key it addressed and a
// message suitable for API clients.
type Error struct {
	Op       string // e.g. "company.get"
	Key      string
	Sentinel error
	Msg      string
	Cause    error
}

func (e *Error) Error() string {
	s := e.Op
	if e.Key != "" {
		s += " " + e.Key
	}
	s += ": " + e.Msg
	if e.Cause != nil && errors.Is(e.Sentinel, ErrStorage) {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Message is the client-facing part of the error, without operation or cause.
func (e *Error) Message() string { return e.Msg }

func (e *Error) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *Error) Unwrap() error        { return e.Cause }

func notFound(op, noun, key string, cause error) error {
	return &Error{Op: op, Key: key, Sentinel: ErrNotFound, Msg: fmt.Sprintf("no %s: %s", noun, key), Cause: cause}
}

func alreadyExists(op, key, msg string, cause error) error {
	return &Error{Op: op, Key: key, Sentinel: ErrAlreadyExists, Msg: msg, Cause: cause}
}

// classify converts a db error into the repo error kinds. Validation errors
// and errors that are already classified pass through.
func classify(op, noun, key string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) || IsValidation(err) {
		return err
	}

	switch {
	case db.IsNotFound(err):
		return notFound(op, noun, key, err)
	case db.IsDuplicateKey(err):
		return alreadyExists(op, key, fmt.Sprintf("duplicate %s: %s", noun, key), err)
	case db.IsCheckViolation(err):
		field := ""
		var dbe *db.DBError
		if errors.As(err, &dbe) {
			field = dbe.Constraint
		}
		return sqlbuild.Invalid(field, "value violates a %s constraint", noun)
	}
	return &Error{Op: op, Key: key, Sentinel: ErrStorage, Msg: "storage failure", Cause: err}
}
