// Package app wires configuration, database, and vector index into one
// initialized application the commands share.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twinops/twindex/db"
	"github.com/twinops/twindex/internal/config"
	"github.com/twinops/twindex/internal/log"
	"github.com/twinops/twindex/internal/store"
	"github.com/twinops/twindex/internal/vector"
)

// Pool sizing and connection lifetimes.
const (
	poolMaxConns        = 10
	poolMinConns        = 2
	poolMaxConnLifetime = time.Hour
	poolMaxConnIdleTime = 30 * time.Minute
	pingTimeout         = 5 * time.Second
)

// App holds the initialized dependencies.
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Store  *store.Store
	Vector *vector.Client

	logger log.Logger
}

// Options toggles which dependencies Setup initializes.
type Options struct {
	Migrate bool // apply schema migrations before opening the pool
	Vector  bool // connect to the vector index and probe it
}

// Setup builds an App from configuration. On any failure everything
// already opened is closed before returning.
func Setup(ctx context.Context, cfg *config.Config, opts Options, logger log.Logger) (app *App, err error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if opts.Migrate {
		if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()

	a := &App{
		Config: cfg,
		Pool:   pool,
		Store:  store.New(pool, logger, cfg.EmbeddingModel),
		logger: logger,
	}

	if opts.Vector {
		a.Vector = vector.New(cfg.VectorURL, cfg.VectorToken)
		info, err := a.Vector.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("probing vector index: %w", err)
		}
		logger.Info("vector index connected",
			"vectors", info.VectorCount,
			"dimension", info.Dimension,
			"similarity", info.SimilarityFunction)
	}

	return a, nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}
	poolCfg.MaxConns = poolMaxConns
	poolCfg.MinConns = poolMinConns
	poolCfg.MaxConnLifetime = poolMaxConnLifetime
	poolCfg.MaxConnIdleTime = poolMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
