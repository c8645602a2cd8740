package sqlbuild

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fragment
// ─────────────────────────────────────────────────────────────────────────────

// Fragment is a piece of SQL together with the values its placeholders bind.
// Placeholders are numbered $1..$len(Args) in the order they appear.
type Fragment struct {
	SQL  string
	Args []any
}

// Next returns the index of the first placeholder free for parameters the
// caller appends after the fragment (e.g. the key of a WHERE clause).
func (f Fragment) Next() int { return len(f.Args) + 1 }

func placeholder(i int) string { return "$" + strconv.Itoa(i) }

// quoteIdent double-quotes a column name, doubling any embedded quote.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

// ErrInvalid is matched by every ValidationError via errors.Is.
var ErrInvalid = errors.New("sqlbuild: invalid input")

// ValidationError reports input a builder refused. Field names the offending
// request key when there is one.
type ValidationError struct {
	Field  string
	Reason string
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }
