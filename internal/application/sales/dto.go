package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreateSaleRequest carries the data to ring up a sale. PaymentMethod
// only matters with MarkPaid set and defaults to cash.
type CreateSaleRequest struct {
	CenterID       uuid.UUID             `json:"center_id" binding:"required"`
	PatientID      *uuid.UUID            `json:"patient_id"`
	SoldBy         uuid.UUID             `json:"sold_by" binding:"required"`
	Items          []SaleItemRequest     `json:"items" binding:"required,min=1,dive"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	MarkPaid       bool                  `json:"mark_paid"`
	PaymentMethod  billing.PaymentMethod `json:"payment_method"`
	Notes          string                `json:"notes"`
}

// SettleSaleRequest carries the data to mark a pending sale paid
type SettleSaleRequest struct {
	SaleID    uuid.UUID             `json:"sale_id" binding:"required"`
	Method    billing.PaymentMethod `json:"method"`
	SettledBy uuid.UUID             `json:"settled_by" binding:"required"`
}

// CancelSaleRequest carries the data to void a sale
type CancelSaleRequest struct {
	SaleID      uuid.UUID `json:"sale_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	CancelledBy uuid.UUID `json:"cancelled_by" binding:"required"`
}

// SaleItemResponse is the read model for a sale line
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse is the read model for a sale
type SaleResponse struct {
	ID             uuid.UUID               `json:"id"`
	SaleNumber     string                  `json:"sale_number"`
	CenterID       uuid.UUID               `json:"center_id"`
	PatientID      *uuid.UUID              `json:"patient_id,omitempty"`
	SoldBy         uuid.UUID               `json:"sold_by"`
	SoldAt         time.Time               `json:"sold_at"`
	TotalAmount    decimal.Decimal         `json:"total_amount"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	FinalAmount    decimal.Decimal         `json:"final_amount"`
	PaymentStatus  sales.SalePaymentStatus `json:"payment_status"`
	PaidAt         *time.Time              `json:"paid_at,omitempty"`
	CancelReason   string                  `json:"cancel_reason,omitempty"`
	CancelledBy    *uuid.UUID              `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time              `json:"cancelled_at,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	Items          []SaleItemResponse      `json:"items"`
}

// CreateSaleResult reports the persisted sale and, when immediate
// settlement was requested, whether it went through. A failed
// settlement never rolls the sale back. PaymentID references the
// payment row written for a settled sale.
type CreateSaleResult struct {
	Sale        SaleResponse `json:"sale"`
	Settled     bool         `json:"settled"`
	SettleError string       `json:"settle_error,omitempty"`
	PaymentID   *uuid.UUID   `json:"payment_id,omitempty"`
}

// ToSaleResponse maps a domain sale to its read model
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i := range s.Items {
		items[i] = SaleItemResponse{
			ProductID:   s.Items[i].ProductID,
			ProductName: s.Items[i].ProductName,
			UnitPrice:   s.Items[i].UnitPrice,
			Quantity:    s.Items[i].Quantity,
			LineTotal:   s.Items[i].LineTotal,
		}
	}
	return SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		CenterID:       s.CenterID,
		PatientID:      s.PatientID,
		SoldBy:         s.SoldBy,
		SoldAt:         s.SoldAt,
		TotalAmount:    s.TotalAmount,
		DiscountAmount: s.DiscountAmount,
		FinalAmount:    s.FinalAmount,
		PaymentStatus:  s.PaymentStatus,
		PaidAt:         s.PaidAt,
		CancelReason:   s.CancelReason,
		CancelledBy:    s.CancelledBy,
		CancelledAt:    s.CancelledAt,
		Notes:          s.Notes,
		Items:          items,
	}
}
