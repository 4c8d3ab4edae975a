package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/twinops/twindex/internal/api"
	"github.com/twinops/twindex/internal/app"
	"github.com/twinops/twindex/internal/config"
)

// runServe starts the HTTP query API. The database is optional at
// startup: without it the server still answers, reporting itself
// unhealthy, so the frontend can come up before the backing services.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr, err := parseServeAddr()
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting HTTP query API", "addr", addr, "version", Version)

	var db api.Pinger
	a, err := app.Setup(ctx, cfg, app.Options{}, logger)
	if err != nil {
		logger.Warn("database unavailable, serving in degraded mode", "error", err)
	} else {
		defer a.Close()
		db = a.Pool
	}

	server := api.NewServer(api.ServerConfig{
		Addr:        addr,
		DB:          db,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})
	return server.Run(ctx)
}
