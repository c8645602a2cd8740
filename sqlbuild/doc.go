// Package sqlbuild turns sparse, caller-supplied field maps into
// parameterized SQL fragments.
//
// Two builders live here:
//
//   - PartialUpdate renders the SET list of an UPDATE statement from the
//     fields a caller wants to change, resolving API field names to column
//     names through an alias table.
//   - Predicate renders a WHERE expression from a whitelisted set of search
//     keys described by a FilterSchema.
//
// Both return a Fragment: SQL text that only ever contains $N placeholders,
// plus the arguments those placeholders bind, in order. No user-supplied
// value is ever written into the SQL text.
//
//	set, err := sqlbuild.PartialUpdate(fields, sqlbuild.Aliases{"numEmployees": "num_employees"})
//	// set.SQL  = `"name"=$1, "num_employees"=$2`
//	// set.Args = []any{"Acme", int64(20)}
//	query := fmt.Sprintf("UPDATE companies SET %s WHERE handle = $%d", set.SQL, set.Next())
package sqlbuild
