package sqlbuild

import "strings"

// Fields maps API field names to the values a partial update should store.
type Fields map[string]Value

// Keys returns the field names in the order PartialUpdate enumerates them.
func (f Fields) Keys() []string { return sortedKeys(f) }

// Aliases maps API field names to column names where the two differ.
// Fields without an entry use their own name as the column.
type Aliases map[string]string

// Column resolves the storage column for an API field name.
func (a Aliases) Column(field string) string {
	if col, ok := a[field]; ok && col != "" {
		return col
	}
	return field
}

// PartialUpdate renders the SET list for an UPDATE touching only the given
// fields. The i-th clause binds $i to the i-th argument; both views come from
// a single pass over the sorted field names. Null values are kept and bind
// as SQL NULL.
func PartialUpdate(fields Fields, aliases Aliases) (Fragment, error) {
	if len(fields) == 0 {
		return Fragment{}, Invalid("", "no data supplied")
	}

	keys := fields.Keys()
	clauses := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		clauses[i] = quoteIdent(aliases.Column(key)) + "=" + placeholder(i+1)
		args[i] = fields[key].Any()
	}

	return Fragment{SQL: strings.Join(clauses, ", "), Args: args}, nil
}
