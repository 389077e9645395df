package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/config"
)

// OpenKV builds the backend selected by cfg.Store.Driver. The returned
// cleanup releases every connection OpenKV opened.
func OpenKV(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KV, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory credential store; sessions will not survive a restart")
		return NewMemoryKV(), func() {}, nil

	case config.StoreDriverSQLite:
		kv, err := OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil

	case config.StoreDriverRedis:
		rdb := NewRedis(cfg.Redis, logger)
		return NewRedisKV(rdb.Client), rdb.Close, nil

	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pg.PoolHandle() == nil {
			return nil, nil, fmt.Errorf("postgres store requires a DSN")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return NewPostgresKV(pg.PoolHandle()), pg.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
