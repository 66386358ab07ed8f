package event

import (
	"context"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifier_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogNotifier(zap.New(core))

	ctx := logger.WithRequestID(context.Background(), "req-1")
	n.Notify(ctx, shared.NotifySuccess, "Bill created")
	n.Notify(ctx, shared.NotifyWarning, "may be stale")
	n.Notify(ctx, shared.NotifyError, "Could not add payment")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	assert.Equal(t, "Bill created", entries[0].Message)
	assert.Equal(t, "notify", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "success", fields["kind"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestLogNotifier_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogNotifier(nil).Notify(context.Background(), shared.NotifyInfo, "hello")
	})
}
