// Package app assembles the service from configuration: database, hooks,
// repositories and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Skryldev/jobly-api/api"
	"github.com/Skryldev/jobly-api/auth"
	"github.com/Skryldev/jobly-api/config"
	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/logging"
	"github.com/Skryldev/jobly-api/metrics"
	"github.com/Skryldev/jobly-api/migrations"
	"github.com/Skryldev/jobly-api/repo"
)

// App owns the resources of one running service.
type App struct {
	cfg     *config.Config
	db      *db.DB
	metrics *metrics.Metrics
	server  *http.Server
}

// OpenDB connects using cfg. An explicit DSN is used as is; otherwise the
// DSN is built from the structured fields by the driver registry.
func OpenDB(cfg config.DatabaseConfig, hooks ...db.Hook) (*db.DB, error) {
	dbCfg := db.Config{
		DSN:             cfg.DSN,
		DriverName:      cfg.Driver,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		DefaultTimeout:  cfg.DefaultTimeout,
		Hooks:           hooks,
	}
	if cfg.DSN != "" {
		return db.Open(dbCfg)
	}
	return db.OpenWithDriver(cfg.Driver, db.DriverOptions{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Name,
		SSLMode:  cfg.SSLMode,
	}, dbCfg)
}

// New opens the database, applies migrations when configured and builds
// the HTTP server. Close releases what New acquired.
func New(cfg *config.Config) (*App, error) {
	m := metrics.New()

	d, err := OpenDB(cfg.Database,
		db.NewLogHook(db.LogHookConfig{
			Logger:             slog.New(logging.NewSlogHandlerWithLogger(logging.WithComponent("db"))),
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
			LogArgs:            cfg.Database.LogArgs,
		}),
		db.NewMetricsHook(m),
	)
	if err != nil {
		return nil, fmt.Errorf("app: open database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(d.Raw(), cfg.Database.Driver); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		logging.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
	}

	jwt, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	h := api.NewHandler(repo.NewStore(d))
	router := api.NewRouter(h, jwt, m, api.Config{
		CORSOrigins:       cfg.Security.CORSOrigins,
		RateLimitRequests: cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
		RequestTimeout:    cfg.Server.WriteTimeout,
	})

	return &App{
		cfg:     cfg,
		db:      d,
		metrics: m,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.server.Handler }

// DB returns the database handle.
func (a *App) DB() *db.DB { return a.db }

// Run serves until ctx is cancelled, then shuts the server down within the
// configured timeout. A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app: shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

// Close releases the database pool.
func (a *App) Close() error { return a.db.Close() }
