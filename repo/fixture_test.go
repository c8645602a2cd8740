package repo_test

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/migrations"
	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/repo"
	"github.com/Skryldev/jobly-api/sqlbuild"
)

// newTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.OpenWithDriver("sqlite3", db.DriverOptions{Database: ":memory:"}, db.Config{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, migrations.Up(d.Raw(), "sqlite3"))
	return d
}

func ptr[T any](v T) *T { return &v }

// seed creates three companies and four jobs:
//
//	c1  "C1"           1 employee   jobs j1 (salary 100, equity 0.1), j2 (200, 0.2), j3 (300, 0)
//	c2  "C2 Holdings"  2 employees  job  j4 (no salary, no equity)
//	c3  "Acme C3"      3 employees
func seed(t *testing.T, d *db.DB) (repo.CompanyRepository, repo.JobRepository) {
	t.Helper()
	ctx := context.Background()
	companies := repo.NewCompanyRepository(d)
	jobs := repo.NewJobRepository(d)

	for _, p := range []models.CreateCompanyParams{
		{Handle: "c1", Name: "C1", Description: "Desc1", NumEmployees: ptr(1), LogoURL: ptr("http://c1.img")},
		{Handle: "c2", Name: "C2 Holdings", Description: "Desc2", NumEmployees: ptr(2), LogoURL: ptr("http://c2.img")},
		{Handle: "c3", Name: "Acme C3", Description: "Desc3", NumEmployees: ptr(3)},
	} {
		_, err := companies.Create(ctx, p)
		require.NoError(t, err, p.Handle)
	}

	for _, p := range []models.CreateJobParams{
		{Title: "J1", Salary: ptr(int64(100)), Equity: ptr(0.1), CompanyHandle: "c1"},
		{Title: "J2", Salary: ptr(int64(200)), Equity: ptr(0.2), CompanyHandle: "c1"},
		{Title: "J3", Salary: ptr(int64(300)), Equity: ptr(0.0), CompanyHandle: "c1"},
		{Title: "Senior j4", CompanyHandle: "c2"},
	} {
		_, err := jobs.Create(ctx, p)
		require.NoError(t, err, p.Title)
	}
	return companies, jobs
}

func filter(kv ...any) sqlbuild.Filter {
	f := sqlbuild.Filter{}
	for i := 0; i < len(kv); i += 2 {
		f[kv[i].(string)] = value(kv[i+1])
	}
	return f
}

func fields(kv ...any) sqlbuild.Fields {
	f := sqlbuild.Fields{}
	for i := 0; i < len(kv); i += 2 {
		f[kv[i].(string)] = value(kv[i+1])
	}
	return f
}

func value(v any) sqlbuild.Value {
	switch x := v.(type) {
	case nil:
		return sqlbuild.Null()
	case string:
		return sqlbuild.Text(x)
	case int:
		return sqlbuild.Int(int64(x))
	case float64:
		return sqlbuild.Number(x)
	case bool:
		return sqlbuild.Bool(x)
	}
	panic("unsupported test value")
}
