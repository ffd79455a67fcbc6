package storage

import (
	"context"
	"fmt"

	"github.com/verinova/onboarding/internal/config"
	"github.com/verinova/onboarding/internal/infra"
)

// Open builds the backend selected by cfg.StorageBackend. The returned close
// function releases any connection the backend opened and is never nil.
func Open(ctx context.Context, cfg config.Config) (Store, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendFile, "":
		s, err := NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case config.BackendRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName+"-device")
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client, cfg.StorageNamespace), func() { client.Close() }, nil
	case config.BackendPostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName+"-device")
		if err != nil {
			return nil, noop, err
		}
		if err := infra.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return NewPostgresStore(pool, cfg.StorageNamespace), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
