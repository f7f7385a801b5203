package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReferenceType identifies which billable entity a payment applies to
type ReferenceType string

const (
	ReferenceTypeCareEpisode ReferenceType = "CARE_EPISODE"
	ReferenceTypeExamination ReferenceType = "EXAMINATION"
	ReferenceTypeSale        ReferenceType = "SALE"
)

// IsValid returns true if the reference type is payable
func (r ReferenceType) IsValid() bool {
	return r == ReferenceTypeCareEpisode || r == ReferenceTypeExamination || r == ReferenceTypeSale
}

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// PaymentMethod is how a payment was collected
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCard         PaymentMethod = "CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid returns true for a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodMobileMoney, MethodCard, MethodBankTransfer:
		return true
	}
	return false
}

// PaymentStatus is the lifecycle state of a payment.
// A cancelled payment keeps its original notes; the reason and actor
// live in dedicated columns instead of a notes-prefix convention.
type PaymentStatus string

const (
	PaymentStatusActive    PaymentStatus = "ACTIVE"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Payment is an immutable record of money received against a billable
// reference. The amount never changes after creation; cancellation
// reverses its effect on the referenced balance exactly once.
type Payment struct {
	shared.BaseAggregateRoot
	ReferenceType  ReferenceType   `gorm:"type:varchar(30);not null;index:idx_payment_reference,priority:1"`
	ReferenceID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_reference,priority:2"`
	PatientID      *uuid.UUID      `gorm:"type:uuid;index"`
	CenterID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method         PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate    time.Time       `gorm:"type:timestamptz;not null;index"`
	ReceivedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	TransactionRef string          `gorm:"type:varchar(100)"`
	Notes          string          `gorm:"type:varchar(500)"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CancelReason   string          `gorm:"type:varchar(500)"`
	CancelledBy    *uuid.UUID      `gorm:"type:uuid"`
	CancelledAt    *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a payment against a billable reference
func NewPayment(
	refType ReferenceType,
	refID uuid.UUID,
	centerID uuid.UUID,
	method PaymentMethod,
	amount decimal.Decimal,
	receivedBy uuid.UUID,
	paymentDate time.Time,
) (*Payment, error) {
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE_TYPE", "Payments can only target care episodes, examinations or sales")
	}
	if refID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference ID cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIVER", "Receiver ID cannot be empty")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReferenceType:     refType,
		ReferenceID:       refID,
		CenterID:          centerID,
		Method:            method,
		Amount:            amount,
		PaymentDate:       paymentDate,
		ReceivedBy:        receivedBy,
		Status:            PaymentStatusActive,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// WithPatient attaches the paying patient
func (p *Payment) WithPatient(patientID uuid.UUID) *Payment {
	p.PatientID = &patientID
	return p
}

// WithTransactionRef attaches an external transaction reference
func (p *Payment) WithTransactionRef(ref string) *Payment {
	p.TransactionRef = ref
	return p
}

// WithNotes attaches free-text notes
func (p *Payment) WithNotes(notes string) *Payment {
	p.Notes = notes
	return p
}

// IsCancelled returns true if the payment has been cancelled
func (p *Payment) IsCancelled() bool {
	return p.Status == PaymentStatusCancelled
}

// Cancel marks the payment cancelled. The original notes stay intact;
// reason and actor are recorded in their own fields. A payment can be
// cancelled exactly once.
func (p *Payment) Cancel(reason string, actor uuid.UUID, at time.Time) error {
	if p.IsCancelled() {
		return shared.NewDomainError("ALREADY_CANCELLED", "Payment has already been cancelled")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	p.Status = PaymentStatusCancelled
	p.CancelReason = reason
	p.CancelledBy = &actor
	p.CancelledAt = &at
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCancelledEvent(p, reason))

	return nil
}
