package main

import (
	"context"
	"fmt"

	"github.com/dongoyo/taproom/config"
	"github.com/dongoyo/taproom/store"
	"github.com/dongoyo/taproom/store/memory"
	"github.com/dongoyo/taproom/store/postgres"
	"github.com/dongoyo/taproom/store/redis"
	"github.com/dongoyo/taproom/store/sqlite"
)

// openStore builds the snapshot store for the configured driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.SnapshotStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewMemory(), nil
	case config.DriverSQLite:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return st, nil
	case config.DriverRedis:
		st, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
