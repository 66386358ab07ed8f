package ledger

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type names
const (
	AggregateTypeBill = "Bill"
)

// Event type names
const (
	EventTypeBillCreated     = "BillCreated"
	EventTypeBillUpdated     = "BillUpdated"
	EventTypeBillVoided      = "BillVoided"
	EventTypeBillDeleted     = "BillDeleted"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentDeleted  = "PaymentDeleted"
)

// BillCreatedEvent is raised when a new bill is created
type BillCreatedEvent struct {
	shared.EventHeader
	BillID      uuid.UUID         `json:"bill_id"`
	BillType    BillType          `json:"bill_type"`
	NetAmount   valueobject.Money `json:"net_amount"`
	Status      BillStatus        `json:"status"`
	ReferenceID *uuid.UUID        `json:"reference_id,omitempty"`
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeBillCreated, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:      b.ID,
		BillType:    b.BillType,
		NetAmount:   b.NetAmount,
		Status:      b.Status,
		ReferenceID: b.ReferenceID,
	}
}

// BillUpdatedEvent is raised when gross amount, discount or other editable fields change
type BillUpdatedEvent struct {
	shared.EventHeader
	BillID    uuid.UUID         `json:"bill_id"`
	NetAmount valueobject.Money `json:"net_amount"`
	Status    BillStatus        `json:"status"`
}

// NewBillUpdatedEvent creates a new BillUpdatedEvent
func NewBillUpdatedEvent(b *Bill) *BillUpdatedEvent {
	return &BillUpdatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeBillUpdated, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:      b.ID,
		NetAmount:   b.NetAmount,
		Status:      b.Status,
	}
}

// BillVoidedEvent is raised when a bill is voided
type BillVoidedEvent struct {
	shared.EventHeader
	BillID         uuid.UUID         `json:"bill_id"`
	PreviousStatus BillStatus        `json:"previous_status"`
	NetAmount      valueobject.Money `json:"net_amount"`
	PaidAmount     valueobject.Money `json:"paid_amount"`
	Reason         string            `json:"reason"`
	VoidedAt       time.Time         `json:"voided_at"`
}

// NewBillVoidedEvent creates a new BillVoidedEvent
func NewBillVoidedEvent(b *Bill, previous BillStatus) *BillVoidedEvent {
	voidedAt := time.Now()
	if b.VoidedAt != nil {
		voidedAt = *b.VoidedAt
	}
	return &BillVoidedEvent{
		EventHeader:    shared.NewEventHeader(EventTypeBillVoided, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:         b.ID,
		PreviousStatus: previous,
		NetAmount:      b.NetAmount,
		PaidAmount:     b.PaidAmount,
		Reason:         b.VoidReason,
		VoidedAt:       voidedAt,
	}
}

// BillDeletedEvent is raised when a bill and its payments are removed
type BillDeletedEvent struct {
	shared.EventHeader
	BillID    uuid.UUID         `json:"bill_id"`
	BillType  BillType          `json:"bill_type"`
	NetAmount valueobject.Money `json:"net_amount"`
}

// NewBillDeletedEvent creates a new BillDeletedEvent
func NewBillDeletedEvent(b *Bill) *BillDeletedEvent {
	return &BillDeletedEvent{
		EventHeader: shared.NewEventHeader(EventTypeBillDeleted, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:      b.ID,
		BillType:    b.BillType,
		NetAmount:   b.NetAmount,
	}
}

// PaymentRecordedEvent is raised when a payment is applied to a bill
type PaymentRecordedEvent struct {
	shared.EventHeader
	BillID     uuid.UUID         `json:"bill_id"`
	PaymentID  uuid.UUID         `json:"payment_id"`
	Amount     valueobject.Money `json:"amount"`
	Method     PaymentMethod     `json:"method"`
	PaidAmount valueobject.Money `json:"paid_amount"`
	BillStatus BillStatus        `json:"bill_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(b *Bill, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		EventHeader: shared.NewEventHeader(EventTypePaymentRecorded, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:      b.ID,
		PaymentID:   p.ID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaidAmount:  b.PaidAmount,
		BillStatus:  b.Status,
	}
}

// PaymentDeletedEvent is raised when a payment is removed from a bill
type PaymentDeletedEvent struct {
	shared.EventHeader
	BillID     uuid.UUID         `json:"bill_id"`
	PaymentID  uuid.UUID         `json:"payment_id"`
	Amount     valueobject.Money `json:"amount"`
	PaidAmount valueobject.Money `json:"paid_amount"`
	BillStatus BillStatus        `json:"bill_status"`
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(b *Bill, p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		EventHeader: shared.NewEventHeader(EventTypePaymentDeleted, AggregateTypeBill, b.ID, b.CustomerID),
		BillID:      b.ID,
		PaymentID:   p.ID,
		Amount:      p.Amount,
		PaidAmount:  b.PaidAmount,
		BillStatus:  b.Status,
	}
}
