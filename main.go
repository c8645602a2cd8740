// Command jobly-api serves the companies and jobs API.
//
// Configuration comes from config.yaml (or CONFIG_PATH) and JOBLY_*
// environment variables; see package config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skryldev/jobly-api/app"
	"github.com/Skryldev/jobly-api/config"
	"github.com/Skryldev/jobly-api/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	a, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error().Err(err).Msg("close database")
		}
	}()

	stats := a.DB().Stats()
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Int("max_open_conns", stats.MaxOpenConnections).
		Msg("database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logging.Info().Msg("server stopped")
}
