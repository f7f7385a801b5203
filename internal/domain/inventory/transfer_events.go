package inventory

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// Event types for the inventory context
const (
	EventTypeTransferApproved  = "inventory.transfer.approved"
	EventTypeTransferCompleted = "inventory.transfer.completed"
	EventTypeStockBelowMin     = "inventory.stock.below_min"
)

// TransferApprovedEvent is emitted when a transfer is approved
type TransferApprovedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string    `json:"transfer_number"`
	SourceCenterID uuid.UUID `json:"source_center_id"`
	DestCenterID   uuid.UUID `json:"dest_center_id"`
}

// NewTransferApprovedEvent creates a TransferApprovedEvent
func NewTransferApprovedEvent(t *StockTransfer) *TransferApprovedEvent {
	return &TransferApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferApproved, "StockTransfer", t.ID),
		TransferNumber:  t.TransferNumber,
		SourceCenterID:  t.SourceCenterID,
		DestCenterID:    t.DestCenterID,
	}
}

// TransferCompletedEvent is emitted when stock has actually moved
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string    `json:"transfer_number"`
	SourceCenterID uuid.UUID `json:"source_center_id"`
	DestCenterID   uuid.UUID `json:"dest_center_id"`
	ItemCount      int       `json:"item_count"`
}

// NewTransferCompletedEvent creates a TransferCompletedEvent
func NewTransferCompletedEvent(t *StockTransfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, "StockTransfer", t.ID),
		TransferNumber:  t.TransferNumber,
		SourceCenterID:  t.SourceCenterID,
		DestCenterID:    t.DestCenterID,
		ItemCount:       len(t.Items),
	}
}

// StockBelowMinEvent is emitted when a mutation leaves an item under
// its minimum threshold
type StockBelowMinEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	CenterID    uuid.UUID `json:"center_id"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
}

// NewStockBelowMinEvent creates a StockBelowMinEvent
func NewStockBelowMinEvent(item *StockItem) *StockBelowMinEvent {
	return &StockBelowMinEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMin, "StockItem", item.ID),
		ProductID:       item.ProductID,
		CenterID:        item.CenterID,
		Quantity:        item.QuantityOnHand,
		MinQuantity:     item.MinQuantity,
	}
}
