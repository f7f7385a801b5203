package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// TransferStatus is the lifecycle state of a stock transfer
type TransferStatus string

const (
	TransferStatusRequested TransferStatus = "REQUESTED"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusRejected  TransferStatus = "REJECTED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsValid returns true for a known status
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusRequested, TransferStatusApproved, TransferStatusCompleted,
		TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if a status transition is allowed
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusRequested:
		return target == TransferStatusApproved || target == TransferStatusRejected || target == TransferStatusCancelled
	case TransferStatusApproved:
		return target == TransferStatusCompleted || target == TransferStatusRejected || target == TransferStatusCancelled
	}
	return false
}

// IsTerminal returns true once no further transition is possible
func (s TransferStatus) IsTerminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// TransferItem is one product line on a stock transfer
type TransferItem struct {
	shared.BaseEntity
	TransferID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "stock_transfer_items"
}

// StockTransfer moves product quantities from one hospital center to
// another. Stock only changes on completion; request and approval just
// validate availability at the source.
type StockTransfer struct {
	shared.BaseAggregateRoot
	TransferNumber string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	SourceCenterID uuid.UUID      `gorm:"type:uuid;not null;index"`
	DestCenterID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status         TransferStatus `gorm:"type:varchar(20);not null;default:'REQUESTED';index"`
	RequestedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	RequestedAt    time.Time      `gorm:"type:timestamptz;not null"`
	ApprovedBy     *uuid.UUID     `gorm:"type:uuid"`
	ApprovedAt     *time.Time     `gorm:"type:timestamptz"`
	CompletedBy    *uuid.UUID     `gorm:"type:uuid"`
	CompletedAt    *time.Time     `gorm:"type:timestamptz"`
	RejectedBy     *uuid.UUID     `gorm:"type:uuid"`
	RejectedAt     *time.Time     `gorm:"type:timestamptz"`
	CancelledBy    *uuid.UUID     `gorm:"type:uuid"`
	CancelledAt    *time.Time     `gorm:"type:timestamptz"`
	StatusReason   string         `gorm:"type:varchar(500)"`
	Notes          string         `gorm:"type:varchar(500)"`
	Items          []TransferItem `gorm:"foreignKey:TransferID"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a transfer request between two distinct centers
func NewStockTransfer(transferNumber string, sourceCenterID, destCenterID, requestedBy uuid.UUID, requestedAt time.Time) (*StockTransfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NUMBER", "Transfer number cannot be empty")
	}
	if sourceCenterID == uuid.Nil || destCenterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Source and destination centers are required")
	}
	if sourceCenterID == destCenterID {
		return nil, shared.NewDomainError("SAME_CENTER", "Source and destination centers must differ")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Requester ID cannot be empty")
	}

	return &StockTransfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferNumber:    transferNumber,
		SourceCenterID:    sourceCenterID,
		DestCenterID:      destCenterID,
		Status:            TransferStatusRequested,
		RequestedBy:       requestedBy,
		RequestedAt:       requestedAt,
	}, nil
}

// AddItem appends a product line, merging duplicates by product
func (t *StockTransfer) AddItem(productID uuid.UUID, quantity int) error {
	if t.Status != TransferStatusRequested {
		return shared.NewDomainError("INVALID_STATUS", "Items can only be changed while the transfer is requested")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			t.Items[i].Quantity += quantity
			t.Items[i].UpdatedAt = time.Now()
			return nil
		}
	}

	t.Items = append(t.Items, TransferItem{
		BaseEntity: shared.NewBaseEntity(),
		TransferID: t.ID,
		ProductID:  productID,
		Quantity:   quantity,
	})
	return nil
}

func (t *StockTransfer) transition(target TransferStatus) error {
	if !t.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot move transfer from "+string(t.Status)+" to "+string(target))
	}
	t.Status = target
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Approve moves the transfer to APPROVED
func (t *StockTransfer) Approve(approver uuid.UUID, at time.Time) error {
	if approver == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("EMPTY_TRANSFER", "Cannot approve a transfer with no items")
	}
	if err := t.transition(TransferStatusApproved); err != nil {
		return err
	}
	t.ApprovedBy = &approver
	t.ApprovedAt = &at
	t.AddDomainEvent(NewTransferApprovedEvent(t))
	return nil
}

// Reject declines a transfer that has not completed yet. Both a
// requested and an already approved transfer can still be rejected.
func (t *StockTransfer) Reject(actor uuid.UUID, reason string, at time.Time) error {
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if err := t.transition(TransferStatusRejected); err != nil {
		return err
	}
	t.RejectedBy = &actor
	t.RejectedAt = &at
	t.StatusReason = reason
	return nil
}

// Cancel abandons a transfer before completion
func (t *StockTransfer) Cancel(actor uuid.UUID, reason string, at time.Time) error {
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if err := t.transition(TransferStatusCancelled); err != nil {
		return err
	}
	t.CancelledBy = &actor
	t.CancelledAt = &at
	t.StatusReason = reason
	return nil
}

// Complete marks the transfer done. Callers must move the stock and
// write the paired ledger entries in the same transaction.
func (t *StockTransfer) Complete(actor uuid.UUID, at time.Time) error {
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if err := t.transition(TransferStatusCompleted); err != nil {
		return err
	}
	t.CompletedBy = &actor
	t.CompletedAt = &at
	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}
