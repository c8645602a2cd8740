// Command migrate applies the embedded schema migrations to the configured
// database.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"

	"github.com/Skryldev/jobly-api/app"
	"github.com/Skryldev/jobly-api/config"
	"github.com/Skryldev/jobly-api/logging"
	"github.com/Skryldev/jobly-api/migrations"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		fatalf("load configuration: %v", err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	d, err := app.OpenDB(cfg.Database)
	if err != nil {
		fatalf("open database: %v", err)
	}

	m, err := migrations.New(d.Raw(), cfg.Database.Driver)
	if err != nil {
		_ = d.Close()
		fatalf("migration init failed: %v", err)
	}
	defer m.Close()
	m.Log = &migrateLogger{log: logging.WithComponent("migrate")}

	if err := run(m, args); err != nil {
		m.Close()
		fatalf("%s failed: %v", args[0], err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		logging.Info().Msg("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		logging.Info().Int("steps", steps).Msg("migrations: down completed")

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
		logging.Info().Int("version", v).Msg("migrations: forced")

	case "drop":
		fmt.Fprintln(os.Stderr, "WARNING: drop will destroy all tables. Type 'yes' to confirm:")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("aborted")
			return nil
		}
		if err := m.Drop(); err != nil {
			return err
		}
		logging.Warn().Msg("migrations: all tables dropped")

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// migrateLogger forwards golang-migrate progress to zerolog.
type migrateLogger struct {
	log zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)
  drop         Drop all tables (dev only)

Configuration is read like the server's: config.yaml or CONFIG_PATH, then
JOBLY_DATABASE_* variables, e.g.

  JOBLY_DATABASE_DRIVER=pgx JOBLY_DATABASE_DSN=postgres://... migrate up`)
}

func fatalf(format string, args ...any) {
	logging.Fatal().Msg(fmt.Sprintf(format, args...))
}
