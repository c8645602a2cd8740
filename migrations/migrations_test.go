package migrations_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/migrations"
)

func TestDir(t *testing.T) {
	for driver, want := range map[string]string{"pgx": "postgres", "postgres": "postgres", "sqlite3": "sqlite"} {
		got, err := migrations.Dir(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got, driver)
	}
	_, err := migrations.Dir("mysql")
	assert.Error(t, err)
}

func TestSource_ListsFirstVersion(t *testing.T) {
	for _, driver := range []string{"pgx", "sqlite3"} {
		src, err := migrations.Source(driver)
		require.NoError(t, err)
		v, err := src.First()
		require.NoError(t, err)
		assert.Equal(t, uint(1), v)
		require.NoError(t, src.Close())
	}
}

func TestUp_SQLiteIsIdempotent(t *testing.T) {
	sqldb, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	require.NoError(t, migrations.Up(sqldb, "sqlite3"))
	require.NoError(t, migrations.Up(sqldb, "sqlite3"))

	for _, table := range []string{"companies", "jobs"} {
		var name string
		err := sqldb.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
