package kv

import (
	"context"
	"fmt"

	"detailgen/internal/infra"
)

// Open builds the backend selected by cfg.StoreDriver. The returned close
// func releases its connections and is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (Store, func(), error) {
	switch cfg.StoreDriver {
	case infra.StorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgres(infra.NewSQLRunner(pool, logger))
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("kv: ensure schema: %w", err)
		}
		return store, pool.Close, nil
	case infra.StoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil
	case infra.StoreFile:
		store, err := NewFile(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return NewMemory(), func() {}, nil
	}
}
