package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/liveops/internal/config"
	"github.com/osse101/liveops/internal/database"
	"github.com/osse101/liveops/internal/database/postgres"
	"github.com/osse101/liveops/internal/database/sqlite"
	"github.com/osse101/liveops/internal/repository"
)

// Store is the event repository the process runs on
type Store interface {
	repository.EventRepository
	Ping(ctx context.Context) error
	Close() error
}

// OpenStore opens the configured backend and applies its migrations
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := database.NewPool(cfg.GetDBConnString(), int(cfg.DBMaxConns), PoolMaxIdle, PoolMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenPool, err)
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
		}
		slog.Info(LogMsgStoreOpened, "driver", cfg.StoreDriver, "host", cfg.DBHost, "database", cfg.DBName)
		return postgres.NewEventRepository(pool, cfg.StoreTimeout), nil

	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.StoreTimeout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenDB, err)
		}
		slog.Info(LogMsgStoreOpened, "driver", cfg.StoreDriver, "path", cfg.SQLitePath)
		return store, nil

	default:
		return nil, fmt.Errorf("%s %q", ErrMsgUnknownDriver, cfg.StoreDriver)
	}
}
