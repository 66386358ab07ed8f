package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryViewStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryViewStore(WithCleanupInterval(10 * time.Millisecond))
	t.Cleanup(func() { _ = s.Close() })

	t.Run("set and get copies values", func(t *testing.T) {
		value := []byte("detail-v1")
		require.NoError(t, s.Set(ctx, "k1", value, time.Minute))
		value[0] = 'X'

		got, ok, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "detail-v1", string(got))

		got[0] = 'Y'
		again, _, _ := s.Get(ctx, "k1")
		assert.Equal(t, "detail-v1", string(again))
	})

	t.Run("miss", func(t *testing.T) {
		_, ok, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "short", []byte("x"), 5*time.Millisecond))
		assert.Eventually(t, func() bool {
			_, ok, _ := s.Get(ctx, "short")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("delete and drop local", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "d1", []byte("x"), time.Minute))
		require.NoError(t, s.Set(ctx, "d2", []byte("x"), time.Minute))
		require.NoError(t, s.Delete(ctx, "d1"))
		s.DropLocal("d2")

		_, ok, _ := s.Get(ctx, "d1")
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, "d2")
		assert.False(t, ok)
	})

	t.Run("close twice", func(t *testing.T) {
		other := NewMemoryViewStore()
		assert.NoError(t, other.Close())
		assert.NoError(t, other.Close())
	})
}

func TestTieredViewStore(t *testing.T) {
	ctx := context.Background()
	l1 := NewMemoryViewStore()
	l2 := NewMemoryViewStore()
	s := NewTieredViewStore(l1, l2, WithL1TTL(time.Minute))
	t.Cleanup(func() { _ = s.Close() })

	t.Run("l2 hit populates l1", func(t *testing.T) {
		require.NoError(t, l2.Set(ctx, "k", []byte("from-l2"), time.Minute))

		got, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "from-l2", string(got))

		_, ok, _ = l1.Get(ctx, "k")
		assert.True(t, ok)

		l1Hits, l2Hits, misses := s.Stats()
		assert.Equal(t, int64(0), l1Hits)
		assert.Equal(t, int64(1), l2Hits)
		assert.Equal(t, int64(0), misses)
	})

	t.Run("set writes both tiers", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "w", []byte("v"), time.Minute))
		_, ok, _ := l1.Get(ctx, "w")
		assert.True(t, ok)
		_, ok, _ = l2.Get(ctx, "w")
		assert.True(t, ok)
	})

	t.Run("drop local keeps l2", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "dl", []byte("v"), time.Minute))
		s.DropLocal("dl")
		_, ok, _ := l1.Get(ctx, "dl")
		assert.False(t, ok)
		_, ok, _ = l2.Get(ctx, "dl")
		assert.True(t, ok)
	})

	t.Run("delete clears both", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "del", []byte("v"), time.Minute))
		require.NoError(t, s.Delete(ctx, "del"))
		_, ok, _ := s.Get(ctx, "del")
		assert.False(t, ok)
	})
}
