package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/inventory"
)

// TransferItemRequest is one requested product line
type TransferItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// RequestTransferRequest carries the data to open a transfer
type RequestTransferRequest struct {
	SourceCenterID uuid.UUID             `json:"source_center_id" binding:"required"`
	DestCenterID   uuid.UUID             `json:"dest_center_id" binding:"required"`
	RequestedBy    uuid.UUID             `json:"requested_by" binding:"required"`
	Items          []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes          string                `json:"notes"`
}

// TransferDecisionRequest carries an approve, reject, cancel or
// complete action on an existing transfer
type TransferDecisionRequest struct {
	TransferID uuid.UUID `json:"transfer_id" binding:"required"`
	ActorID    uuid.UUID `json:"actor_id" binding:"required"`
	Reason     string    `json:"reason"`
}

// AdjustStockRequest corrects a stock count outside of sales and transfers
type AdjustStockRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	CenterID    uuid.UUID `json:"center_id" binding:"required"`
	Delta       int       `json:"delta" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	PerformedBy uuid.UUID `json:"performed_by" binding:"required"`
}

// TransferItemResponse is the read model for a transfer line
type TransferItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// TransferResponse is the read model for a stock transfer
type TransferResponse struct {
	ID             uuid.UUID                `json:"id"`
	TransferNumber string                   `json:"transfer_number"`
	SourceCenterID uuid.UUID                `json:"source_center_id"`
	DestCenterID   uuid.UUID                `json:"dest_center_id"`
	Status         inventory.TransferStatus `json:"status"`
	RequestedBy    uuid.UUID                `json:"requested_by"`
	RequestedAt    time.Time                `json:"requested_at"`
	ApprovedBy     *uuid.UUID               `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time               `json:"approved_at,omitempty"`
	CompletedBy    *uuid.UUID               `json:"completed_by,omitempty"`
	CompletedAt    *time.Time               `json:"completed_at,omitempty"`
	StatusReason   string                   `json:"status_reason,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	Items          []TransferItemResponse   `json:"items"`
}

// StockItemResponse is the read model for a per-center stock record
type StockItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	CenterID       uuid.UUID `json:"center_id"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	MinQuantity    int       `json:"min_quantity"`
	MaxQuantity    int       `json:"max_quantity"`
	BelowMin       bool      `json:"below_min"`
}

// MovementResponse is the read model for a stock ledger entry
type MovementResponse struct {
	ID            uuid.UUID                       `json:"id"`
	ProductID     uuid.UUID                       `json:"product_id"`
	CenterID      uuid.UUID                       `json:"center_id"`
	Type          inventory.MovementType          `json:"type"`
	Quantity      int                             `json:"quantity"`
	BalanceBefore int                             `json:"balance_before"`
	BalanceAfter  int                             `json:"balance_after"`
	ReferenceType inventory.MovementReferenceType `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID                      `json:"reference_id,omitempty"`
	PerformedBy   uuid.UUID                       `json:"performed_by"`
	Reason        string                          `json:"reason,omitempty"`
	OccurredAt    time.Time                       `json:"occurred_at"`
}

// ToTransferResponse maps a domain transfer to its read model
func ToTransferResponse(t *inventory.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i := range t.Items {
		items[i] = TransferItemResponse{
			ProductID: t.Items[i].ProductID,
			Quantity:  t.Items[i].Quantity,
		}
	}
	return TransferResponse{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		SourceCenterID: t.SourceCenterID,
		DestCenterID:   t.DestCenterID,
		Status:         t.Status,
		RequestedBy:    t.RequestedBy,
		RequestedAt:    t.RequestedAt,
		ApprovedBy:     t.ApprovedBy,
		ApprovedAt:     t.ApprovedAt,
		CompletedBy:    t.CompletedBy,
		CompletedAt:    t.CompletedAt,
		StatusReason:   t.StatusReason,
		Notes:          t.Notes,
		Items:          items,
	}
}

// ToStockItemResponse maps a domain stock item to its read model
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:             item.ID,
		ProductID:      item.ProductID,
		CenterID:       item.CenterID,
		QuantityOnHand: item.QuantityOnHand,
		MinQuantity:    item.MinQuantity,
		MaxQuantity:    item.MaxQuantity,
		BelowMin:       item.IsBelowMin(),
	}
}

// ToMovementResponse maps a ledger entry to its read model
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		CenterID:      m.CenterID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		PerformedBy:   m.PerformedBy,
		Reason:        m.Reason,
		OccurredAt:    m.OccurredAt,
	}
}
