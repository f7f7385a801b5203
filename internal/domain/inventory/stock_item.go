package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// StockItem tracks the on-hand quantity of one product at one hospital
// center. Quantity never goes negative; every mutation is mirrored by a
// StockMovement row written in the same transaction.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_center,priority:1"`
	CenterID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_center,priority:2"`
	QuantityOnHand int       `gorm:"not null;default:0"`
	MinQuantity    int       `gorm:"not null;default:0"`
	MaxQuantity    int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock record for a product at a center
func NewStockItem(productID, centerID uuid.UUID, minQuantity, maxQuantity int) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if minQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Minimum quantity cannot be negative")
	}
	if maxQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Maximum quantity cannot be negative")
	}
	if maxQuantity > 0 && maxQuantity < minQuantity {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Maximum quantity cannot be below minimum quantity")
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		CenterID:          centerID,
		QuantityOnHand:    0,
		MinQuantity:       minQuantity,
		MaxQuantity:       maxQuantity,
	}, nil
}

// HasSufficientStock checks whether quantity units can be taken
func (s *StockItem) HasSufficientStock(quantity int) bool {
	return quantity > 0 && s.QuantityOnHand >= quantity
}

// Increase adds stock
func (s *StockItem) Increase(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.QuantityOnHand += quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Decrease removes stock, refusing to go below zero
func (s *StockItem) Decrease(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.QuantityOnHand < quantity {
		return shared.ErrInsufficientStock
	}
	s.QuantityOnHand -= quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// UpdateThresholds changes the reorder bounds
func (s *StockItem) UpdateThresholds(minQuantity, maxQuantity int) error {
	if minQuantity < 0 || maxQuantity < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	if maxQuantity > 0 && maxQuantity < minQuantity {
		return shared.NewDomainError("INVALID_THRESHOLD", "Maximum quantity cannot be below minimum quantity")
	}
	s.MinQuantity = minQuantity
	s.MaxQuantity = maxQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsBelowMin reports whether the item needs restocking
func (s *StockItem) IsBelowMin() bool {
	return s.QuantityOnHand < s.MinQuantity
}
