package event

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const notificationDateLayout = "Jan 2, 2006"

// NotificationHandler turns committed domain events into success notifications
type NotificationHandler struct {
	notifier shared.Notifier
	printer  *message.Printer
}

// NewNotificationHandler creates a handler that formats amounts for the given locale.
// An undetermined tag falls back to English.
func NewNotificationHandler(notifier shared.Notifier, tag language.Tag) *NotificationHandler {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	if tag == language.Und {
		tag = language.English
	}
	return &NotificationHandler{
		notifier: notifier,
		printer:  message.NewPrinter(tag),
	}
}

// EventTypes implements shared.EventHandler
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeBillCreated,
		ledger.EventTypeBillUpdated,
		ledger.EventTypeBillVoided,
		ledger.EventTypeBillDeleted,
		ledger.EventTypePaymentRecorded,
		ledger.EventTypePaymentDeleted,
		membership.EventTypeMembershipAssigned,
		training.EventTypePtPackageAssigned,
		training.EventTypePtPackageCancelled,
		training.EventTypePtSessionConsumed,
		training.EventTypePtPackageCompleted,
	}
}

// Handle implements shared.EventHandler. Events without a message are ignored.
func (h *NotificationHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	msg := h.Message(evt)
	if msg == "" {
		return nil
	}
	h.notifier.Notify(ctx, shared.NotifySuccess, msg)
	return nil
}

// Message renders the user-facing text for an event
func (h *NotificationHandler) Message(evt shared.DomainEvent) string {
	p := h.printer
	switch e := evt.(type) {
	case *ledger.BillCreatedEvent:
		return p.Sprintf("Bill created for %v", h.amount(e.NetAmount))
	case *ledger.BillUpdatedEvent:
		return p.Sprintf("Bill updated, net amount is now %v", h.amount(e.NetAmount))
	case *ledger.BillVoidedEvent:
		return p.Sprintf("Bill of %v voided", h.amount(e.NetAmount))
	case *ledger.BillDeletedEvent:
		return p.Sprintf("Bill of %v deleted", h.amount(e.NetAmount))
	case *ledger.PaymentRecordedEvent:
		return p.Sprintf("Payment of %v recorded, bill is %s", h.amount(e.Amount), e.BillStatus)
	case *ledger.PaymentDeletedEvent:
		return p.Sprintf("Payment of %v removed, bill is %s", h.amount(e.Amount), e.BillStatus)
	case *membership.MembershipAssignedEvent:
		return p.Sprintf("%s membership active until %s", e.PlanName, e.EndDate.Format(notificationDateLayout))
	case *training.PtPackageAssignedEvent:
		return p.Sprintf("%s assigned with %d sessions", e.PackageName, e.SessionsTotal)
	case *training.PtPackageCancelledEvent:
		return p.Sprintf("PT package cancelled with %d sessions unused", e.SessionsRemaining)
	case *training.PtSessionConsumedEvent:
		return p.Sprintf("Session recorded, %d remaining", e.SessionsRemaining)
	case *training.PtPackageCompletedEvent:
		return p.Sprintf("PT package completed after %d sessions", e.SessionsTotal)
	default:
		return ""
	}
}

// amount wraps money in an x/text currency formatter. Unknown currency codes
// fall back to the plain "PHP 900.00" form.
func (h *NotificationHandler) amount(m valueobject.Money) any {
	unit, err := currency.ParseISO(string(m.Currency()))
	if err != nil {
		return m.String()
	}
	return currency.Symbol(unit.Amount(m.Decimal().InexactFloat64()))
}

var _ shared.EventHandler = (*NotificationHandler)(nil)
