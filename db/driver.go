package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour: DSN construction and the
// error mapper to install on the opened DB.
type Driver interface {
	// Name returns the registry name, e.g. "pgx". It is also the
	// database/sql driver name except for "sqlite3"; see sqlDriverName.
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)

	ErrorMapper() ErrorMapper
}

// DriverOptions carries connection parameters in a driver-agnostic form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-full", ...
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var drivers = map[string]Driver{
	PostgresDriver{}.Name(): PostgresDriver{},
	PgxDriver{}.Name():      PgxDriver{},
	SQLiteDriver{}.Name():   SQLiteDriver{},
}

// LookupDriver returns the registered Driver by name.
func LookupDriver(name string) (Driver, error) {
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver builds the DSN from structured options and opens the DB.
//
//	d, err := db.OpenWithDriver("pgx", db.DriverOptions{
//	    Host: "localhost", User: "jobly", Database: "jobly",
//	}, db.Config{MaxOpenConns: 25})
func OpenWithDriver(driverName string, opts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}
	dsn, err := drv.DSN(opts)
	if err != nil {
		return nil, fmt.Errorf("db: build DSN: %w", err)
	}

	cfg.DriverName = drv.Name()
	cfg.DSN = dsn

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver targets lib/pq, which registers itself as "postgres".
type PostgresDriver struct{}

func (PostgresDriver) Name() string { return "postgres" }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	kv := []string{
		"host=" + pqQuote(o.Host),
		"port=" + strconv.Itoa(portOr(o.Port, 5432)),
		"dbname=" + pqQuote(o.Database),
		"sslmode=" + pqQuote(sslModeOr(o.SSLMode)),
	}
	if o.User != "" {
		kv = append(kv, "user="+pqQuote(o.User))
	}
	if o.Password != "" {
		kv = append(kv, "password="+pqQuote(o.Password))
	}
	for _, k := range sortedExtra(o.Extra) {
		kv = append(kv, k+"="+pqQuote(o.Extra[k]))
	}
	return strings.Join(kv, " "), nil
}

func (PostgresDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// pqQuote quotes a keyword/value DSN value when it contains spaces or quotes.
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (pgx stdlib)
// ─────────────────────────────────────────────────────────────────────────────

// PgxDriver targets jackc/pgx/v5/stdlib and builds URL-style DSNs.
type PgxDriver struct{}

func (PgxDriver) Name() string { return "pgx" }

func (PgxDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("pgx driver: Host and Database are required")
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   o.Host + ":" + strconv.Itoa(portOr(o.Port, 5432)),
		Path:   "/" + o.Database,
	}
	switch {
	case o.User != "" && o.Password != "":
		u.User = url.UserPassword(o.User, o.Password)
	case o.User != "":
		u.User = url.User(o.User)
	}
	q := url.Values{}
	q.Set("sslmode", sslModeOr(o.SSLMode))
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (PgxDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver targets mattn/go-sqlite3. Foreign keys are switched on unless
// Extra overrides _foreign_keys.
//
// Connections are opened through sqliteUnicodeDriver, whose lower() folds
// Unicode the way strings.ToLower does. SQLite's built-in lower() only folds
// ASCII, so LOWER(col) LIKE $1 would miss "École" for a bound "%école%".
type SQLiteDriver struct{}

const sqliteUnicodeDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicodeDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", unicodeLower, true)
		},
	})
}

// unicodeLower replaces lower(X). NULL arrives as a nil []byte and stays NULL.
func unicodeLower(v any) any {
	switch x := v.(type) {
	case string:
		return strings.ToLower(x)
	case []byte:
		if x == nil {
			return nil
		}
		return strings.ToLower(string(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return nil
}

// sqlDriverName maps a registry name to the database/sql driver to open.
func sqlDriverName(name string) string {
	if name == (SQLiteDriver{}).Name() {
		return sqliteUnicodeDriver
	}
	return name
}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	params := map[string]string{"_foreign_keys": "on"}
	for k, v := range o.Extra {
		params[k] = v
	}
	parts := make([]string, 0, len(params))
	for _, k := range sortedExtra(params) {
		parts = append(parts, k+"="+url.QueryEscape(params[k]))
	}
	sep := "?"
	if strings.Contains(o.Database, "?") {
		sep = "&"
	}
	return o.Database + sep + strings.Join(parts, "&"), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func portOr(p, def int) int {
	if p == 0 {
		return def
	}
	return p
}

func sslModeOr(m string) string {
	if m == "" {
		return "disable"
	}
	return m
}

func sortedExtra(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
