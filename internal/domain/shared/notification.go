package shared

import "context"

// NotificationKind is the severity of a user-facing notification
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)

// Notifier is the fire-and-forget sink for toast/alert style messages.
// Implementations must not block the caller and have no error to report.
type Notifier interface {
	Notify(ctx context.Context, kind NotificationKind, message string)
}

// NopNotifier discards every notification
type NopNotifier struct{}

// Notify implements Notifier
func (NopNotifier) Notify(context.Context, NotificationKind, string) {}

var _ Notifier = NopNotifier{}
