package event

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogNotifier writes notifications to the structured log.
// It is the default sink until a push channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(l *zap.Logger) *LogNotifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogNotifier{logger: l.Named("notify")}
}

// Notify implements shared.Notifier
func (n *LogNotifier) Notify(ctx context.Context, kind shared.NotificationKind, msg string) {
	l := logger.Enrich(ctx, n.logger)
	if ce := l.Check(levelFor(kind), msg); ce != nil {
		ce.Write(zap.String("kind", string(kind)))
	}
}

func levelFor(kind shared.NotificationKind) zapcore.Level {
	switch kind {
	case shared.NotifyError:
		return zapcore.ErrorLevel
	case shared.NotifyWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

var _ shared.Notifier = (*LogNotifier)(nil)
