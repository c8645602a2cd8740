package config

import (
	"errors"
	"fmt"

	"github.com/Skryldev/jobly-api/logging"
)

// MinJWTSecretLength is the shortest accepted HMAC signing secret.
const MinJWTSecretLength = 32

var supportedDrivers = map[string]bool{"pgx": true, "postgres": true, "sqlite3": true}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateDatabase(),
		c.validateSecurity(),
		c.validateLogging(),
	)
}

func (c *Config) validateServer() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateDatabase() error {
	var errs []error
	if !supportedDrivers[c.Database.Driver] {
		errs = append(errs, fmt.Errorf("database.driver %q is not one of pgx, postgres, sqlite3", c.Database.Driver))
	}
	if c.Database.DSN == "" && c.Database.Name == "" {
		errs = append(errs, errors.New("database.dsn or database.name is required"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes cannot be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateSecurity() error {
	var errs []error
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("security.jwt_secret must be at least %d characters", MinJWTSecretLength))
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, errors.New("security.token_ttl must be positive"))
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs <= 0 || c.Security.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("security.rate_limit_reqs and rate_limit_window must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateLogging() error {
	var errs []error
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not recognised", c.Logging.Level))
	}
	if f := c.Logging.Format; f != "json" && f != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", f))
	}
	return errors.Join(errs...)
}
