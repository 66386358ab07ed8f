package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates a client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisViewStore keeps views in Redis so every instance shares them.
type RedisViewStore struct {
	client     *redis.Client
	ownsClient bool
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisViewStoreOption configures a RedisViewStore.
type RedisViewStoreOption func(*RedisViewStore)

// WithRedisTTL sets the TTL used when Set is called with ttl <= 0.
func WithRedisTTL(ttl time.Duration) RedisViewStoreOption {
	return func(s *RedisViewStore) {
		s.defaultTTL = ttl
	}
}

// WithRedisLogger sets the logger.
func WithRedisLogger(logger *zap.Logger) RedisViewStoreOption {
	return func(s *RedisViewStore) {
		s.logger = logger
	}
}

// WithOwnedClient makes Close also close the Redis client.
func WithOwnedClient() RedisViewStoreOption {
	return func(s *RedisViewStore) {
		s.ownsClient = true
	}
}

// NewRedisViewStore creates a store on an existing client. The caller keeps
// ownership of the client unless WithOwnedClient is given.
func NewRedisViewStore(client *redis.Client, opts ...RedisViewStoreOption) *RedisViewStore {
	s := &RedisViewStore{
		client:     client,
		defaultTTL: defaultMemoryTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements ViewStore.
func (s *RedisViewStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements ViewStore.
func (s *RedisViewStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements ViewStore.
func (s *RedisViewStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close implements ViewStore.
func (s *RedisViewStore) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

// Client returns the underlying client.
func (s *RedisViewStore) Client() *redis.Client {
	return s.client
}

var _ ViewStore = (*RedisViewStore)(nil)
