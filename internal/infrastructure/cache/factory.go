package cache

import (
	"context"
	"fmt"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/config"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// NewSynchronizerFromConfig builds the view store named by cfg.Sync.Store and
// the synchronizer on top of it.
//
//   - memory: process-local only
//   - redis:  shared Redis store
//   - tiered: local L1 over Redis L2 with Pub/Sub invalidation between instances
//
// When Redis is unreachable the memory store is used and a warning is logged.
func NewSynchronizerFromConfig(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *telemetry.LedgerMetrics,
) (*Synchronizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("views")

	opts := []SynchronizerOption{
		WithSettleDelay(cfg.Sync.SettleDelay),
		WithRefetchTimeout(cfg.Sync.RefetchTimeout),
		WithViewTTL(cfg.Sync.ViewTTL),
		WithSyncLogger(logger),
		WithSyncMetrics(metrics),
	}
	keys := NewKeySpace(cfg.Sync.KeyPrefix)

	newMemory := func() *MemoryViewStore {
		return NewMemoryViewStore(WithMemoryTTL(cfg.Sync.ViewTTL), WithMemoryLogger(logger))
	}

	if cfg.Sync.Store == "memory" {
		return NewSynchronizer(keys, newMemory(), opts...), nil
	}

	client, err := NewRedisClient(ctx, RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory view store. "+
			"Views will not be shared across instances.",
			zap.String("store", cfg.Sync.Store),
			zap.Error(err))
		return NewSynchronizer(keys, newMemory(), opts...), nil
	}

	redisStore := NewRedisViewStore(client,
		WithRedisTTL(cfg.Sync.ViewTTL),
		WithRedisLogger(logger),
		WithOwnedClient(),
	)

	switch cfg.Sync.Store {
	case "redis":
		logger.Info("Using Redis view store")
		return NewSynchronizer(keys, redisStore, opts...), nil
	case "tiered":
		logger.Info("Using tiered view store", zap.String("channel", cfg.Sync.PubSubChannel))
		inv := NewRedisViewInvalidator(client,
			WithInvalidatorChannel(cfg.Sync.PubSubChannel),
			WithInvalidatorLogger(logger),
		)
		store := NewTieredViewStore(newMemory(), redisStore, WithTieredLogger(logger))
		return NewSynchronizer(keys, store, append(opts, WithInvalidator(inv))...), nil
	default:
		_ = redisStore.Close()
		return nil, fmt.Errorf("unknown view store %q", cfg.Sync.Store)
	}
}
