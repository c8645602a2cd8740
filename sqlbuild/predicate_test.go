package sqlbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/sqlbuild"
)

var companySchema = sqlbuild.FilterSchema{
	Keys: []sqlbuild.FilterKey{
		{Name: "name", Column: "name", Type: sqlbuild.TypeText, Op: sqlbuild.OpContainsFold},
		{Name: "minEmployees", Column: "num_employees", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGT},
		{Name: "maxEmployees", Column: "num_employees", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpLT},
	},
	Ranges: []sqlbuild.Range{{Min: "minEmployees", Max: "maxEmployees"}},
}

var jobSchema = sqlbuild.FilterSchema{
	Keys: []sqlbuild.FilterKey{
		{Name: "title", Column: "title", Type: sqlbuild.TypeText, Op: sqlbuild.OpContainsFold},
		{Name: "minSalary", Column: "salary", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGTE},
		{Name: "hasEquity", Column: "equity", Type: sqlbuild.TypeFlag, Op: sqlbuild.OpPositive},
	},
}

func TestPredicate_Empty(t *testing.T) {
	p, err := sqlbuild.Predicate(nil, companySchema)
	require.NoError(t, err)
	assert.Equal(t, "1=1", p.SQL)
	assert.Empty(t, p.Args)
}

func TestPredicate_SchemaOrder(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{
		"maxEmployees": sqlbuild.Int(50),
		"name":         sqlbuild.Text("Ab"),
		"minEmployees": sqlbuild.Int(10),
	}, companySchema)
	require.NoError(t, err)

	assert.Equal(t,
		`LOWER("name") LIKE $1 ESCAPE '\' AND "num_employees" > $2 AND "num_employees" < $3`,
		p.SQL)
	assert.Equal(t, []any{"%ab%", int64(10), int64(50)}, p.Args)
}

func TestPredicate_UnknownKey(t *testing.T) {
	_, err := sqlbuild.Predicate(sqlbuild.Filter{"foo": sqlbuild.Int(1)}, companySchema)
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlbuild.ErrInvalid)

	var verr *sqlbuild.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "foo", verr.Field)
	assert.Contains(t, err.Error(), "foo")
}

func TestPredicate_Range(t *testing.T) {
	_, err := sqlbuild.Predicate(sqlbuild.Filter{
		"minEmployees": sqlbuild.Int(50),
		"maxEmployees": sqlbuild.Int(10),
	}, companySchema)
	assert.ErrorIs(t, err, sqlbuild.ErrInvalid)

	p, err := sqlbuild.Predicate(sqlbuild.Filter{
		"minEmployees": sqlbuild.Int(10),
		"maxEmployees": sqlbuild.Int(50),
	}, companySchema)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(50)}, p.Args)
}

func TestPredicate_NumericText(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{"minSalary": sqlbuild.Text("85000")}, jobSchema)
	require.NoError(t, err)
	assert.Equal(t, `"salary" >= $1`, p.SQL)
	assert.Equal(t, []any{int64(85000)}, p.Args)

	_, err = sqlbuild.Predicate(sqlbuild.Filter{"minSalary": sqlbuild.Text("lots")}, jobSchema)
	var verr *sqlbuild.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "minSalary", verr.Field)
}

func TestPredicate_Flag(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{"hasEquity": sqlbuild.Bool(true)}, jobSchema)
	require.NoError(t, err)
	assert.Equal(t, `"equity" > 0`, p.SQL)
	assert.Empty(t, p.Args)

	p, err = sqlbuild.Predicate(sqlbuild.Filter{"hasEquity": sqlbuild.Bool(false)}, jobSchema)
	require.NoError(t, err)
	assert.Equal(t, "1=1", p.SQL)

	p, err = sqlbuild.Predicate(sqlbuild.Filter{"hasEquity": sqlbuild.Text("true")}, jobSchema)
	require.NoError(t, err)
	assert.Equal(t, `"equity" > 0`, p.SQL)

	_, err = sqlbuild.Predicate(sqlbuild.Filter{"hasEquity": sqlbuild.Text("sometimes")}, jobSchema)
	assert.ErrorIs(t, err, sqlbuild.ErrInvalid)
}

func TestPredicate_FlagDoesNotShiftPlaceholders(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{
		"title":     sqlbuild.Text("Eng"),
		"minSalary": sqlbuild.Int(1000),
		"hasEquity": sqlbuild.Bool(true),
	}, jobSchema)
	require.NoError(t, err)
	assert.Equal(t,
		`LOWER("title") LIKE $1 ESCAPE '\' AND "salary" >= $2 AND "equity" > 0`,
		p.SQL)
	assert.Equal(t, []any{"%eng%", int64(1000)}, p.Args)
	assert.Equal(t, 3, p.Next())
}

func TestPredicate_TextIsBoundNotInterpolated(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{"name": sqlbuild.Text("x' OR '1'='1")}, companySchema)
	require.NoError(t, err)
	assert.NotContains(t, p.SQL, "OR")
	assert.Equal(t, []any{"%x' or '1'='1%"}, p.Args)
}

func TestPredicate_EscapesLikeWildcards(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{"name": sqlbuild.Text(`50%_off\`)}, companySchema)
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_off\\%`}, p.Args)
}

func TestPredicate_TypeMismatch(t *testing.T) {
	_, err := sqlbuild.Predicate(sqlbuild.Filter{"name": sqlbuild.Int(3)}, companySchema)
	assert.ErrorIs(t, err, sqlbuild.ErrInvalid)
}

func TestPredicate_NullIsAbsent(t *testing.T) {
	p, err := sqlbuild.Predicate(sqlbuild.Filter{
		"name":         sqlbuild.Null(),
		"minEmployees": sqlbuild.Int(3),
	}, companySchema)
	require.NoError(t, err)
	assert.Equal(t, `"num_employees" > $1`, p.SQL)
}

func TestPredicate_IntegerColumnBounds(t *testing.T) {
	schema := sqlbuild.FilterSchema{Keys: []sqlbuild.FilterKey{
		{Name: "gt", Column: "n", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGT, Integer: true},
		{Name: "gte", Column: "n", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGTE, Integer: true},
		{Name: "lt", Column: "n", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpLT, Integer: true},
		{Name: "lte", Column: "n", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpLTE, Integer: true},
	}}

	tests := []struct {
		key  string
		in   sqlbuild.Value
		sql  string
		want int64
	}{
		{"gt", sqlbuild.Text("2.5"), `"n" > $1`, 2},
		{"gt", sqlbuild.Number(-2.5), `"n" > $1`, -3},
		{"gte", sqlbuild.Text("2.5"), `"n" >= $1`, 3},
		{"gte", sqlbuild.Number(-2.5), `"n" >= $1`, -2},
		{"lt", sqlbuild.Text("2.5"), `"n" < $1`, 3},
		{"lt", sqlbuild.Int(7), `"n" < $1`, 7},
		{"lte", sqlbuild.Text("2.5"), `"n" <= $1`, 2},
		{"lte", sqlbuild.Number(2147483647), `"n" <= $1`, 2147483647},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.in.String(), func(t *testing.T) {
			p, err := sqlbuild.Predicate(sqlbuild.Filter{tt.key: tt.in}, schema)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, p.SQL)
			assert.Equal(t, []any{tt.want}, p.Args)
		})
	}

	for _, raw := range []string{"1e300", "-1e300", "2147483648", "-2147483649"} {
		t.Run("out of range "+raw, func(t *testing.T) {
			_, err := sqlbuild.Predicate(sqlbuild.Filter{"gte": sqlbuild.Text(raw)}, schema)
			var verr *sqlbuild.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "gte", verr.Field)
		})
	}
}
