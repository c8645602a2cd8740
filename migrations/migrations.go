// Package migrations embeds the schema for every supported database and runs
// it through golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dir returns the embedded directory holding the migrations for a
// database/sql driver name.
func Dir(driverName string) (string, error) {
	switch driverName {
	case "pgx", "postgres":
		return "postgres", nil
	case "sqlite3":
		return "sqlite", nil
	}
	return "", fmt.Errorf("migrations: no migrations for driver %q", driverName)
}

// Source returns the embedded migrations for driverName as a migrate source.
func Source(driverName string) (source.Driver, error) {
	dir, err := Dir(driverName)
	if err != nil {
		return nil, err
	}
	return iofs.New(files, dir)
}

// New binds the embedded migrations to an already open connection pool.
// Closing the returned Migrate also closes sqldb.
func New(sqldb *sql.DB, driverName string) (*migrate.Migrate, error) {
	src, err := Source(driverName)
	if err != nil {
		return nil, err
	}

	var drv database.Driver
	switch driverName {
	case "pgx":
		drv, err = pgxmigrate.WithInstance(sqldb, &pgxmigrate.Config{})
	case "postgres":
		drv, err = postgres.WithInstance(sqldb, &postgres.Config{})
	case "sqlite3":
		drv, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: %s instance: %w", driverName, err)
	}
	return migrate.NewWithInstance("iofs", src, driverName, drv)
}

// Up applies every pending migration. An already current schema is not an
// error.
func Up(sqldb *sql.DB, driverName string) error {
	m, err := New(sqldb, driverName)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
