package cache

import (
	"context"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSynchronizerFromConfig_Memory(t *testing.T) {
	cfg := &config.Config{
		Sync: config.SyncConfig{
			Store:          "memory",
			RefetchTimeout: time.Second,
			ViewTTL:        time.Minute,
			KeyPrefix:      "gym:view:",
		},
	}

	s, err := NewSynchronizerFromConfig(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.store.(*MemoryViewStore)
	assert.True(t, ok)
	assert.Nil(t, s.invalidator)
	assert.Equal(t, time.Second, s.refetchTimeout)
}

func TestNewSynchronizerFromConfig_RedisUnavailableFallsBack(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: 1},
		Sync: config.SyncConfig{
			Store:          "tiered",
			RefetchTimeout: time.Second,
			ViewTTL:        time.Minute,
			KeyPrefix:      "gym:view:",
		},
	}

	s, err := NewSynchronizerFromConfig(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.store.(*MemoryViewStore)
	assert.True(t, ok)
}
