package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ReportPeriod bounds a report query
type ReportPeriod struct {
	CenterID uuid.UUID `json:"center_id" binding:"required"`
	From     time.Time `json:"from" binding:"required"`
	To       time.Time `json:"to" binding:"required"`
}

// PaymentSummaryRow aggregates active payments by method and reference
// type over a period
type PaymentSummaryRow struct {
	Method        billing.PaymentMethod `json:"method"`
	ReferenceType billing.ReferenceType `json:"reference_type"`
	Count         int64                 `json:"count"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
}

// SalesSummaryRow aggregates settled sales per day
type SalesSummaryRow struct {
	Day         time.Time       `json:"day"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// StockLevelRow is one stock record joined with its product
type StockLevelRow struct {
	ProductCode    string `json:"product_code"`
	ProductName    string `json:"product_name"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	MinQuantity    int    `json:"min_quantity"`
	BelowMin       bool   `json:"below_min"`
}

// TransferHistoryRow is one transfer in a center's history
type TransferHistoryRow struct {
	TransferNumber string                   `json:"transfer_number"`
	SourceCenter   string                   `json:"source_center"`
	DestCenter     string                   `json:"dest_center"`
	Status         inventory.TransferStatus `json:"status"`
	ItemCount      int                      `json:"item_count"`
	RequestedAt    time.Time                `json:"requested_at"`
	CompletedAt    *time.Time               `json:"completed_at,omitempty"`
}
