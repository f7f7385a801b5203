package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SalePaymentStatus tracks whether a sale has been settled
type SalePaymentStatus string

const (
	SalePaymentPending   SalePaymentStatus = "PENDING"
	SalePaymentPaid      SalePaymentStatus = "PAID"
	SalePaymentCancelled SalePaymentStatus = "CANCELLED"
)

// IsValid returns true for a known status
func (s SalePaymentStatus) IsValid() bool {
	switch s {
	case SalePaymentPending, SalePaymentPaid, SalePaymentCancelled:
		return true
	}
	return false
}

// SaleItem is one product line on a pharmacy sale. Unit price is
// snapshotted from the catalog at sale time so later price changes
// never rewrite history.
type SaleItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Sale is a point-of-sale transaction at a hospital center pharmacy.
// Completing a sale decrements stock and writes ledger entries in the
// same transaction; cancelling restores them.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber     string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	CenterID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PatientID      *uuid.UUID        `gorm:"type:uuid;index"`
	SoldBy         uuid.UUID         `gorm:"type:uuid;not null"`
	SoldAt         time.Time         `gorm:"type:timestamptz;not null;index"`
	TotalAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	FinalAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	PaymentStatus  SalePaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt         *time.Time        `gorm:"type:timestamptz"`
	CancelReason   string            `gorm:"type:varchar(500)"`
	CancelledBy    *uuid.UUID        `gorm:"type:uuid"`
	CancelledAt    *time.Time        `gorm:"type:timestamptz"`
	Notes          string            `gorm:"type:varchar(500)"`
	Items          []SaleItem        `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale opens a pending sale at a center
func NewSale(saleNumber string, centerID, soldBy uuid.UUID, soldAt time.Time) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if soldBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Seller ID cannot be empty")
	}

	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		CenterID:          centerID,
		SoldBy:            soldBy,
		SoldAt:            soldAt,
		TotalAmount:       decimal.Zero,
		DiscountAmount:    decimal.Zero,
		FinalAmount:       decimal.Zero,
		PaymentStatus:     SalePaymentPending,
	}, nil
}

// WithPatient attaches the buying patient
func (s *Sale) WithPatient(patientID uuid.UUID) *Sale {
	s.PatientID = &patientID
	return s
}

// AddItem appends a product line and recalculates totals
func (s *Sale) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error {
	if s.PaymentStatus != SalePaymentPending {
		return shared.NewDomainError("INVALID_STATUS", "Items can only be added to a pending sale")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	s.Items = append(s.Items, SaleItem{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   lineTotal,
	})
	s.recalculateTotals()
	return nil
}

// ApplyDiscount sets an absolute discount, capped at the item total
func (s *Sale) ApplyDiscount(amount decimal.Decimal) error {
	if s.PaymentStatus != SalePaymentPending {
		return shared.NewDomainError("INVALID_STATUS", "Discounts can only change on a pending sale")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if amount.GreaterThan(s.TotalAmount) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the sale total")
	}
	s.DiscountAmount = amount
	s.recalculateTotals()
	return nil
}

func (s *Sale) recalculateTotals() {
	total := decimal.Zero
	for i := range s.Items {
		total = total.Add(s.Items[i].LineTotal)
	}
	s.TotalAmount = total
	s.FinalAmount = total.Sub(s.DiscountAmount)
	if s.FinalAmount.IsNegative() {
		s.FinalAmount = decimal.Zero
	}
	s.UpdatedAt = time.Now()
}

// MarkPaid settles a pending sale
func (s *Sale) MarkPaid(at time.Time) error {
	if s.PaymentStatus != SalePaymentPending {
		return shared.NewDomainError("INVALID_STATUS", "Only a pending sale can be marked paid")
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError("EMPTY_SALE", "Cannot settle a sale with no items")
	}
	s.PaymentStatus = SalePaymentPaid
	s.PaidAt = &at
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsCancelled returns true if the sale has been cancelled
func (s *Sale) IsCancelled() bool {
	return s.PaymentStatus == SalePaymentCancelled
}

// Cancel voids the sale. Callers must restore stock through ledger
// entries in the same transaction. A sale can be cancelled once.
func (s *Sale) Cancel(reason string, actor uuid.UUID, at time.Time) error {
	if s.IsCancelled() {
		return shared.NewDomainError("ALREADY_CANCELLED", "Sale has already been cancelled")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	s.PaymentStatus = SalePaymentCancelled
	s.CancelReason = reason
	s.CancelledBy = &actor
	s.CancelledAt = &at
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
