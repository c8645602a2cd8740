package sqlbuild

import (
	"math"
	"strings"
)

// Filter maps search keys to the values supplied for them.
type Filter map[string]Value

// ValueType is the declared type a filter value is coerced to.
type ValueType uint8

const (
	TypeNumeric ValueType = iota
	TypeText
	TypeFlag
)

// Op is the comparison a filter key renders.
type Op uint8

const (
	// OpGT .. OpLTE compare the column against a bound number.
	OpGT Op = iota
	OpGTE
	OpLT
	OpLTE
	// OpContainsFold is a case-insensitive substring match.
	OpContainsFold
	// OpPositive restricts to rows whose column is > 0. It binds nothing.
	OpPositive
)

var comparators = map[Op]string{
	OpGT:  ">",
	OpGTE: ">=",
	OpLT:  "<",
	OpLTE: "<=",
}

// FilterKey declares one recognized search key.
type FilterKey struct {
	Name   string
	Column string
	Type   ValueType
	Op     Op
	// Integer marks a numeric key compared against a 32-bit integer column.
	// Fractional bounds are moved to the equivalent whole number and bounds
	// outside the column's range are rejected.
	Integer bool
}

// Range of a 32-bit INTEGER column.
const (
	minColumnInt = math.MinInt32
	maxColumnInt = math.MaxInt32
)

// Range pairs two numeric keys whose values must satisfy Min <= Max when
// both are supplied.
type Range struct {
	Min string
	Max string
}

// FilterSchema is the whitelist of search keys for one resource. Keys are
// rendered in declaration order.
type FilterSchema struct {
	Keys   []FilterKey
	Ranges []Range
}

func (s FilterSchema) lookup(name string) (FilterKey, bool) {
	for _, k := range s.Keys {
		if k.Name == name {
			return k, true
		}
	}
	return FilterKey{}, false
}

// term is a filter key with its value already coerced to the declared type.
type term struct {
	key  FilterKey
	num  float64
	text string
	flag bool
	// bound is what a numeric term binds.
	bound any
}

// Predicate renders filter as a boolean SQL expression under schema.
//
// Every key must be declared by the schema. Values are coerced to the
// declared type, ranges are checked, and the surviving terms are joined with
// AND in schema order. Null values count as absent. A filter that yields no
// terms renders as "1=1".
func Predicate(filter Filter, schema FilterSchema) (Fragment, error) {
	for _, name := range sortedKeys(filter) {
		if _, ok := schema.lookup(name); !ok {
			return Fragment{}, Invalid(name, "unknown filter %q", name)
		}
	}

	terms := make([]term, 0, len(filter))
	nums := make(map[string]float64, len(filter))
	for _, key := range schema.Keys {
		v, ok := filter[key.Name]
		if !ok || v.IsNull() {
			continue
		}
		t, err := coerce(key, v)
		if err != nil {
			return Fragment{}, err
		}
		if key.Type == TypeNumeric {
			nums[key.Name] = t.num
		}
		terms = append(terms, t)
	}

	for _, r := range schema.Ranges {
		lo, okLo := nums[r.Min]
		hi, okHi := nums[r.Max]
		if okLo && okHi && lo > hi {
			return Fragment{}, Invalid(r.Min, "%s cannot be greater than %s", r.Min, r.Max)
		}
	}

	var (
		clauses []string
		args    []any
	)
	for _, t := range terms {
		col := quoteIdent(t.key.Column)
		switch t.key.Op {
		case OpContainsFold:
			args = append(args, "%"+escapeLike(strings.ToLower(t.text))+"%")
			clauses = append(clauses, "LOWER("+col+") LIKE "+placeholder(len(args))+` ESCAPE '\'`)
		case OpPositive:
			if t.flag {
				clauses = append(clauses, col+" > 0")
			}
		default:
			args = append(args, t.bound)
			clauses = append(clauses, col+" "+comparators[t.key.Op]+" "+placeholder(len(args)))
		}
	}

	if len(clauses) == 0 {
		return Fragment{SQL: "1=1"}, nil
	}
	return Fragment{SQL: strings.Join(clauses, " AND "), Args: args}, nil
}

func coerce(key FilterKey, v Value) (term, error) {
	t := term{key: key}
	switch key.Type {
	case TypeNumeric:
		n, ok := v.number()
		if !ok {
			return t, Invalid(key.Name, "must be a number, got %s", v.Kind())
		}
		t.num = n
		t.bound = Number(n).Any()
		if key.Integer {
			b, err := integerBound(key, n)
			if err != nil {
				return t, err
			}
			t.bound = b
		}
	case TypeFlag:
		b, ok := v.boolean()
		if !ok {
			return t, Invalid(key.Name, "must be true or false")
		}
		t.flag = b
	default:
		if v.Kind() != KindText {
			return t, Invalid(key.Name, "must be text, got %s", v.Kind())
		}
		t.text = v.text
	}
	return t, nil
}

// integerBound converts n into the whole number that selects the same
// integers under key.Op: x > 2.5 is x > 2, x >= 2.5 is x >= 3.
func integerBound(key FilterKey, n float64) (int64, error) {
	switch key.Op {
	case OpGT, OpLTE:
		n = math.Floor(n)
	default:
		n = math.Ceil(n)
	}
	if n < minColumnInt || n > maxColumnInt {
		return 0, Invalid(key.Name, "must be between %d and %d", minColumnInt, maxColumnInt)
	}
	return int64(n), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
