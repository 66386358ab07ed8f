package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultMemoryTTL       = 5 * time.Minute
)

// MemoryViewStore keeps views in process memory with per-entry expiry.
// Values are copied in and out so callers never share a slice with the store.
type MemoryViewStore struct {
	entries         sync.Map // map[string]*memoryEntry
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	stopCh          chan struct{}
	stopped         int32

	hits   int64
	misses int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryViewStoreOption configures a MemoryViewStore.
type MemoryViewStoreOption func(*MemoryViewStore)

// WithMemoryTTL sets the TTL used when Set is called with ttl <= 0.
func WithMemoryTTL(ttl time.Duration) MemoryViewStoreOption {
	return func(s *MemoryViewStore) {
		s.defaultTTL = ttl
	}
}

// WithCleanupInterval sets how often expired entries are swept.
func WithCleanupInterval(interval time.Duration) MemoryViewStoreOption {
	return func(s *MemoryViewStore) {
		s.cleanupInterval = interval
	}
}

// WithMemoryLogger sets the logger.
func WithMemoryLogger(logger *zap.Logger) MemoryViewStoreOption {
	return func(s *MemoryViewStore) {
		s.logger = logger
	}
}

// NewMemoryViewStore creates the store and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryViewStore(opts ...MemoryViewStoreOption) *MemoryViewStore {
	s := &MemoryViewStore{
		defaultTTL:      defaultMemoryTTL,
		cleanupInterval: defaultCleanupInterval,
		logger:          zap.NewNop(),
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupExpired()

	return s
}

// Get implements ViewStore.
func (s *MemoryViewStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.entries.Load(key); ok {
		entry := v.(*memoryEntry)
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&s.hits, 1)
			return cloneBytes(entry.value), true, nil
		}
		s.entries.Delete(key)
	}
	atomic.AddInt64(&s.misses, 1)
	return nil, false, nil
}

// Set implements ViewStore.
func (s *MemoryViewStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.entries.Store(key, &memoryEntry{
		value:     cloneBytes(value),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete implements ViewStore.
func (s *MemoryViewStore) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// DropLocal implements LocalDropper.
func (s *MemoryViewStore) DropLocal(key string) {
	s.entries.Delete(key)
}

// Len returns the number of entries, expired ones included until swept.
func (s *MemoryViewStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns hit and miss counters.
func (s *MemoryViewStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryViewStore) Close() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
	return nil
}

func (s *MemoryViewStore) cleanupExpired() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			removed := 0
			s.entries.Range(func(key, value any) bool {
				if value.(*memoryEntry).isExpired(now) {
					s.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				s.logger.Debug("Swept expired views", zap.Int("removed", removed))
			}
		}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var (
	_ ViewStore    = (*MemoryViewStore)(nil)
	_ LocalDropper = (*MemoryViewStore)(nil)
)
