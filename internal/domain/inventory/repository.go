package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// StockItemRepository provides access to per-center stock records
type StockItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	FindByProductAndCenter(ctx context.Context, productID, centerID uuid.UUID) (*StockItem, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]StockItem, error)
	FindBelowMin(ctx context.Context, centerID uuid.UUID) ([]StockItem, error)
	Save(ctx context.Context, item *StockItem) error
	// SaveWithLock persists using optimistic locking on the version
	// column so concurrent stock mutations fail instead of clobbering.
	SaveWithLock(ctx context.Context, item *StockItem) error
}

// StockMovementRepository provides access to the append-only stock ledger
type StockMovementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)
	FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	FindByReference(ctx context.Context, refType MovementReferenceType, refID uuid.UUID) ([]StockMovement, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	Save(ctx context.Context, movement *StockMovement) error
}

// StockTransferRepository provides access to inter-center transfers
type StockTransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)
	FindByNumber(ctx context.Context, transferNumber string) (*StockTransfer, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)
	FindByStatus(ctx context.Context, status TransferStatus, filter shared.Filter) ([]StockTransfer, error)
	Save(ctx context.Context, transfer *StockTransfer) error
	SaveWithLock(ctx context.Context, transfer *StockTransfer) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
