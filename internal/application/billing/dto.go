package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest carries the data to record a payment
type CreatePaymentRequest struct {
	ReferenceType  billing.ReferenceType `json:"reference_type" binding:"required"`
	ReferenceID    uuid.UUID             `json:"reference_id" binding:"required"`
	PatientID      *uuid.UUID            `json:"patient_id"`
	CenterID       uuid.UUID             `json:"center_id" binding:"required"`
	Method         billing.PaymentMethod `json:"method" binding:"required"`
	Amount         decimal.Decimal       `json:"amount" binding:"required"`
	ReceivedBy     uuid.UUID             `json:"received_by" binding:"required"`
	TransactionRef string                `json:"transaction_ref"`
	Notes          string                `json:"notes"`
}

// CancelPaymentRequest carries the data to cancel a payment
type CancelPaymentRequest struct {
	PaymentID   uuid.UUID `json:"payment_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	CancelledBy uuid.UUID `json:"cancelled_by" binding:"required"`
}

// PaymentResponse is the read model for a payment
type PaymentResponse struct {
	ID             uuid.UUID             `json:"id"`
	ReferenceType  billing.ReferenceType `json:"reference_type"`
	ReferenceID    uuid.UUID             `json:"reference_id"`
	PatientID      *uuid.UUID            `json:"patient_id,omitempty"`
	CenterID       uuid.UUID             `json:"center_id"`
	Method         billing.PaymentMethod `json:"method"`
	Amount         decimal.Decimal       `json:"amount"`
	PaymentDate    time.Time             `json:"payment_date"`
	ReceivedBy     uuid.UUID             `json:"received_by"`
	TransactionRef string                `json:"transaction_ref,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Status         billing.PaymentStatus `json:"status"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	CancelledBy    *uuid.UUID            `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// CreatePaymentResult pairs the recorded payment with the balance it
// left on the referenced episode, when one applies
type CreatePaymentResult struct {
	Payment          PaymentResponse  `json:"payment"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`
}

// ToPaymentResponse maps a domain payment to its read model
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		ReferenceType:  p.ReferenceType,
		ReferenceID:    p.ReferenceID,
		PatientID:      p.PatientID,
		CenterID:       p.CenterID,
		Method:         p.Method,
		Amount:         p.Amount,
		PaymentDate:    p.PaymentDate,
		ReceivedBy:     p.ReceivedBy,
		TransactionRef: p.TransactionRef,
		Notes:          p.Notes,
		Status:         p.Status,
		CancelReason:   p.CancelReason,
		CancelledBy:    p.CancelledBy,
		CancelledAt:    p.CancelledAt,
		CreatedAt:      p.CreatedAt,
	}
}

// ToPaymentResponses maps a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
