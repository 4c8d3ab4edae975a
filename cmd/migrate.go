package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/twinops/twindex/internal/app"
	"github.com/twinops/twindex/internal/config"
	"github.com/twinops/twindex/internal/etl"
	"github.com/twinops/twindex/internal/profile"
)

// runMigrate loads the profile document and pushes it through the full
// pipeline: relational rows, raw JSON, content chunks, vector upserts.
// A file lock keeps two migrate runs from interleaving their
// delete-then-insert stages.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if err := cfg.ValidateVector(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	unlock, err := acquireMigrateLock()
	if err != nil {
		return err
	}
	defer unlock()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting profile migration", "profile", cfg.ProfilePath, "version", Version)

	doc, err := profile.Load(cfg.ProfilePath, logger)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	a, err := app.Setup(ctx, cfg, app.Options{Migrate: true, Vector: true}, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	pipeline := etl.New(a.Store, a.Vector, etl.Config{
		BatchSize:     cfg.BatchSize,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		ResetIndex:    cfg.ResetIndex,
	}, logger)

	stats, err := pipeline.Run(ctx, doc)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	logger.Info("migration successful",
		"professional_id", stats.ProfessionalID,
		"experiences", stats.Experiences,
		"skills", stats.Skills,
		"projects", stats.Projects,
		"education", stats.Education,
		"chunks", stats.Chunks,
		"vectors", stats.Vectors,
		"duration", stats.Duration)
	return nil
}

// acquireMigrateLock takes the single-process migration lock. A second
// concurrent run fails immediately instead of waiting.
func acquireMigrateLock() (func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".twindex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "migrate.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring migration lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another migration is already running (lock: %s)", lock.Path())
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("releasing migration lock", "error", err)
		}
	}, nil
}
