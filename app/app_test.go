package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/app"
	"github.com/Skryldev/jobly-api/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:       "sqlite3",
			Name:         ":memory:",
			MaxOpenConns: 1,
			AutoMigrate:  true,
		},
		Security: config.SecurityConfig{
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			TokenTTL:        time.Hour,
			RateLimitReqs:   10,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestNew_ServesMigratedDatabase(t *testing.T) {
	a, err := app.New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	for _, path := range []string{"/health", "/companies", "/jobs"} {
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "%s: %s", path, rec.Body.String())
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"
	_, err := app.New(cfg)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := app.New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOpenDB_ExplicitDSN(t *testing.T) {
	d, err := app.OpenDB(config.DatabaseConfig{Driver: "sqlite3", DSN: "file::memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	defer d.Close()
	assert.NoError(t, d.Ping(context.Background()))
}
