package billing

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the billing context
const (
	EventTypePaymentRecorded  = "billing.payment.recorded"
	EventTypePaymentCancelled = "billing.payment.cancelled"
)

// PaymentRecordedEvent is emitted when a payment is created
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	CenterID      uuid.UUID       `json:"center_id"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID),
		ReferenceType:   p.ReferenceType,
		ReferenceID:     p.ReferenceID,
		CenterID:        p.CenterID,
		Method:          p.Method,
		Amount:          p.Amount,
	}
}

// PaymentCancelledEvent is emitted when a payment is cancelled
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// NewPaymentCancelledEvent creates a PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment, reason string) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCancelled, "Payment", p.ID),
		ReferenceType:   p.ReferenceType,
		ReferenceID:     p.ReferenceID,
		Amount:          p.Amount,
		Reason:          reason,
	}
}
