// Package config loads the service configuration in three layers:
// built-in defaults, an optional YAML file, then JOBLY_* environment
// variables (highest priority).
//
//	JOBLY_SERVER_PORT=8080           -> server.port
//	JOBLY_DATABASE_DSN=postgres://…  -> database.dsn
//	JOBLY_SECURITY_CORS_ORIGINS=a,b  -> security.cors_origins
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from environment variable names.
	EnvPrefix = "JOBLY_"

	// ConfigPathEnvVar names an explicit YAML file to load.
	ConfigPathEnvVar = "CONFIG_PATH"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "/etc/jobly/config.yaml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// DatabaseConfig selects the driver and pool. When DSN is empty the
// connection is described by Host, Port, User, Password, Name and SSLMode.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	DefaultTimeout  time.Duration `koanf:"default_timeout"`

	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
	LogArgs            bool          `koanf:"log_args"`

	// AutoMigrate applies the embedded migrations at startup.
	AutoMigrate bool `koanf:"auto_migrate"`
}

type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:             "pgx",
			Host:               "localhost",
			Port:               5432,
			Name:               "jobly",
			SSLMode:            "disable",
			MaxOpenConns:       25,
			MaxIdleConns:       10,
			ConnMaxLifetime:    5 * time.Minute,
			ConnMaxIdleTime:    2 * time.Minute,
			DefaultTimeout:     10 * time.Second,
			SlowQueryThreshold: 200 * time.Millisecond,
		},
		Security: SecurityConfig{
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the layered configuration and validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file
// layer.
func LoadFile(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase reads the same layers as Load but validates only the
// database and logging sections. Tools that never serve HTTP use it.
func LoadDatabase() (*Config, error) {
	cfg, err := load(findConfigFile())
	if err != nil {
		return nil, err
	}
	if err := errors.Join(cfg.validateDatabase(), cfg.validateLogging()); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps JOBLY_SECTION_SOME_KEY to section.some_key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + rest
}

var slicePaths = []string{"security.cors_origins"}

// splitSlices turns comma-separated environment values into slices.
func splitSlices(k *koanf.Koanf) error {
	for _, path := range slicePaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("config: set %s: %w", path, err)
		}
	}
	return nil
}
