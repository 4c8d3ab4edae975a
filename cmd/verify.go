package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/twinops/twindex/internal/config"
	"github.com/twinops/twindex/internal/vector"
	"github.com/twinops/twindex/internal/verify"
)

// runVerify runs the vector index health suite and writes the JSON
// report into the working directory. A failing suite exits non-zero.
func runVerify() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateVector(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting vector index verification", "version", Version)

	runner := verify.NewRunner(vector.New(cfg.VectorURL, cfg.VectorToken), logger)
	summary := runner.Run(ctx)

	path, err := verify.WriteReport(summary, ".", time.Now())
	if err != nil {
		return err
	}

	logger.Info("verification complete",
		"passed", summary.Passed,
		"failed", summary.Failed,
		"success_rate", fmt.Sprintf("%.1f%%", summary.SuccessRate*100),
		"duration", fmt.Sprintf("%.3fs", summary.Duration),
		"report", path)

	if !summary.AllPassed {
		return fmt.Errorf("%d of %d checks failed", summary.Failed, summary.TotalTests)
	}
	return nil
}
