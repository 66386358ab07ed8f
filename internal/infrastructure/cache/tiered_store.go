package cache

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TieredViewStore reads through a process-local L1 in front of a shared L2.
// Writes go to L2 first, then L1. Remote instances learn about changes through
// the Synchronizer's invalidation channel and drop their L1 copies.
type TieredViewStore struct {
	l1     *MemoryViewStore
	l2     ViewStore
	l1TTL  time.Duration
	logger *zap.Logger

	l1Hits   int64
	l2Hits   int64
	l2Misses int64
}

// TieredViewStoreOption configures a TieredViewStore.
type TieredViewStoreOption func(*TieredViewStore)

// WithL1TTL caps how long a value may live in L1.
func WithL1TTL(ttl time.Duration) TieredViewStoreOption {
	return func(s *TieredViewStore) {
		s.l1TTL = ttl
	}
}

// WithTieredLogger sets the logger.
func WithTieredLogger(logger *zap.Logger) TieredViewStoreOption {
	return func(s *TieredViewStore) {
		s.logger = logger
	}
}

// NewTieredViewStore combines l1 and l2.
func NewTieredViewStore(l1 *MemoryViewStore, l2 ViewStore, opts ...TieredViewStoreOption) *TieredViewStore {
	s := &TieredViewStore{
		l1:     l1,
		l2:     l2,
		l1TTL:  30 * time.Second,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements ViewStore.
func (s *TieredViewStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, _ := s.l1.Get(ctx, key); ok {
		atomic.AddInt64(&s.l1Hits, 1)
		return data, true, nil
	}

	data, ok, err := s.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		atomic.AddInt64(&s.l2Misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&s.l2Hits, 1)
	_ = s.l1.Set(ctx, key, data, s.l1TTL)
	return data, true, nil
}

// Set implements ViewStore.
func (s *TieredViewStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := s.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return s.l1.Set(ctx, key, value, l1TTL)
}

// Delete implements ViewStore.
func (s *TieredViewStore) Delete(ctx context.Context, key string) error {
	s.l1.DropLocal(key)
	return s.l2.Delete(ctx, key)
}

// DropLocal implements LocalDropper.
func (s *TieredViewStore) DropLocal(key string) {
	s.l1.DropLocal(key)
}

// Stats returns L1 hits, L2 hits and final misses.
func (s *TieredViewStore) Stats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&s.l1Hits), atomic.LoadInt64(&s.l2Hits), atomic.LoadInt64(&s.l2Misses)
}

// Close closes both tiers.
func (s *TieredViewStore) Close() error {
	var lastErr error
	if err := s.l2.Close(); err != nil {
		lastErr = err
	}
	if err := s.l1.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

var (
	_ ViewStore    = (*TieredViewStore)(nil)
	_ LocalDropper = (*TieredViewStore)(nil)
)
