package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCloseTimeout = 5 * time.Second

// InvalidationAction says what a remote instance should do with its copies.
type InvalidationAction string

const (
	InvalidationStale InvalidationAction = "stale"
	InvalidationEvict InvalidationAction = "evict"
)

// Invalidation is broadcast to other instances after a local MarkStale or Evict.
type Invalidation struct {
	Action    InvalidationAction `json:"action"`
	StateKeys []string           `json:"state_keys"`
	StoreKeys []string           `json:"store_keys,omitempty"`
	Origin    string             `json:"origin"`
	Timestamp int64              `json:"timestamp"`
}

// Invalidator fans invalidations out to other instances.
type Invalidator interface {
	Publish(ctx context.Context, msg Invalidation) error
	// Subscribe blocks delivering messages to callback until ctx is done.
	Subscribe(ctx context.Context, callback func(Invalidation)) error
	Close() error
}

// RedisViewInvalidator implements Invalidator with Redis Pub/Sub.
type RedisViewInvalidator struct {
	client    *redis.Client
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisViewInvalidatorOption configures a RedisViewInvalidator.
type RedisViewInvalidatorOption func(*RedisViewInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel.
func WithInvalidatorChannel(channel string) RedisViewInvalidatorOption {
	return func(i *RedisViewInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger.
func WithInvalidatorLogger(logger *zap.Logger) RedisViewInvalidatorOption {
	return func(i *RedisViewInvalidator) {
		i.logger = logger
	}
}

// NewRedisViewInvalidator creates an invalidator on a shared client. The
// caller keeps ownership of the client.
func NewRedisViewInvalidator(client *redis.Client, opts ...RedisViewInvalidatorOption) *RedisViewInvalidator {
	i := &RedisViewInvalidator{
		client:  client,
		channel: "gym:views:invalidate",
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Publish implements Invalidator.
func (i *RedisViewInvalidator) Publish(ctx context.Context, msg Invalidation) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	i.logger.Debug("Published view invalidation",
		zap.String("action", string(msg.Action)),
		zap.Strings("keys", msg.StateKeys),
		zap.String("channel", i.channel))
	return nil
}

// Subscribe implements Invalidator.
func (i *RedisViewInvalidator) Subscribe(ctx context.Context, callback func(Invalidation)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to view invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("View invalidation channel closed")
				return nil
			}
			var inv Invalidation
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				i.logger.Error("Failed to unmarshal invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			i.deliver(callback, inv)
		}
	}
}

func (i *RedisViewInvalidator) deliver(callback func(Invalidation), inv Invalidation) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in invalidation callback", zap.Any("panic", r))
		}
	}()
	callback(inv)
}

func (i *RedisViewInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops a running subscription and waits for it to exit.
func (i *RedisViewInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for invalidation subscription to stop")
		}
	}
	return nil
}

var _ Invalidator = (*RedisViewInvalidator)(nil)
