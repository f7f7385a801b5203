package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// MovementType classifies a stock ledger entry and fixes its direction
type MovementType string

const (
	MovementTypeSale        MovementType = "SALE"
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	MovementTypeTransferIn  MovementType = "TRANSFER_IN"
	MovementTypeAdjustIn    MovementType = "ADJUST_IN"
	MovementTypeAdjustOut   MovementType = "ADJUST_OUT"
)

// IsValid returns true for a known movement type
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale, MovementTypeTransferOut, MovementTypeTransferIn,
		MovementTypeAdjustIn, MovementTypeAdjustOut:
		return true
	}
	return false
}

// IsIncrease returns true if the movement adds stock
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementTypeTransferIn, MovementTypeAdjustIn:
		return true
	}
	return false
}

// IsDecrease returns true if the movement removes stock
func (t MovementType) IsDecrease() bool {
	return t.IsValid() && !t.IsIncrease()
}

// MovementReferenceType names the kind of document a movement traces to
type MovementReferenceType string

const (
	MovementRefSale       MovementReferenceType = "SALE"
	MovementRefTransfer   MovementReferenceType = "STOCK_TRANSFER"
	MovementRefAdjustment MovementReferenceType = "ADJUSTMENT"
)

// StockMovement is an append-only ledger entry. Quantity is stored
// positive; the type fixes the sign. BalanceBefore and BalanceAfter
// snapshot the stock item at write time so history can be audited
// without replaying the ledger.
type StockMovement struct {
	shared.BaseAggregateRoot
	StockItemID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	CenterID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Type          MovementType          `gorm:"type:varchar(20);not null;index"`
	Quantity      int                   `gorm:"not null"`
	BalanceBefore int                   `gorm:"not null"`
	BalanceAfter  int                   `gorm:"not null"`
	ReferenceType MovementReferenceType `gorm:"type:varchar(30);index:idx_movement_reference,priority:1"`
	ReferenceID   *uuid.UUID            `gorm:"type:uuid;index:idx_movement_reference,priority:2"`
	PerformedBy   uuid.UUID             `gorm:"type:uuid;not null"`
	Reason        string                `gorm:"type:varchar(500)"`
	OccurredAt    time.Time             `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a ledger entry for a stock item mutation.
// The caller passes the item state BEFORE the mutation; the entry
// derives the resulting balance from the movement direction.
func NewStockMovement(
	item *StockItem,
	movementType MovementType,
	quantity int,
	refType MovementReferenceType,
	refID *uuid.UUID,
	performedBy uuid.UUID,
	occurredAt time.Time,
) (*StockMovement, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item cannot be nil")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if performedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	before := item.QuantityOnHand
	var after int
	if movementType.IsIncrease() {
		after = before + quantity
	} else {
		if before < quantity {
			return nil, shared.ErrInsufficientStock
		}
		after = before - quantity
	}

	return &StockMovement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StockItemID:       item.ID,
		ProductID:         item.ProductID,
		CenterID:          item.CenterID,
		Type:              movementType,
		Quantity:          quantity,
		BalanceBefore:     before,
		BalanceAfter:      after,
		ReferenceType:     refType,
		ReferenceID:       refID,
		PerformedBy:       performedBy,
		OccurredAt:        occurredAt,
	}, nil
}

// WithReason attaches a free-text explanation, used for adjustments
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// SignedQuantity returns the quantity with the direction applied
func (m *StockMovement) SignedQuantity() int {
	if m.Type.IsIncrease() {
		return m.Quantity
	}
	return -m.Quantity
}
