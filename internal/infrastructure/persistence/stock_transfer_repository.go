package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var transferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"requested_at":    true,
	"status":          true,
}

// GormStockTransferRepository implements inventory.StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer with its lines by ID. Returns nil when not found.
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByNumber finds a transfer by its document number
func (r *GormStockTransferRepository) FindByNumber(ctx context.Context, transferNumber string) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&transfer, "transfer_number = ?", transferNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByCenter lists transfers where the center is either source or destination
func (r *GormStockTransferRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]inventory.StockTransfer, error) {
	var transfers []inventory.StockTransfer
	query := r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).
		Preload("Items").
		Where("source_center_id = ? OR dest_center_id = ?", centerID, centerID)
	query = applyFilter(query, filter, transferSortFields, "requested_at")

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByStatus lists transfers in a given state
func (r *GormStockTransferRepository) FindByStatus(ctx context.Context, status inventory.TransferStatus, filter shared.Filter) ([]inventory.StockTransfer, error) {
	var transfers []inventory.StockTransfer
	query := r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).
		Preload("Items").
		Where("status = ?", status)
	query = applyFilter(query, filter, transferSortFields, "requested_at")

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer together with its lines
func (r *GormStockTransferRepository) Save(ctx context.Context, transfer *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Save(transfer).Error
}

// SaveWithLock saves with optimistic locking (checks version). Lines
// are immutable once the transfer leaves REQUESTED, so only the header
// row participates in the version check.
func (r *GormStockTransferRepository) SaveWithLock(ctx context.Context, transfer *inventory.StockTransfer) error {
	result := r.db.WithContext(ctx).
		Model(transfer).
		Where("id = ? AND version = ?", transfer.ID, transfer.Version-1).
		Updates(map[string]interface{}{
			"status":        transfer.Status,
			"approved_by":   transfer.ApprovedBy,
			"approved_at":   transfer.ApprovedAt,
			"completed_by":  transfer.CompletedBy,
			"completed_at":  transfer.CompletedAt,
			"rejected_by":   transfer.RejectedBy,
			"rejected_at":   transfer.RejectedAt,
			"cancelled_by":  transfer.CancelledBy,
			"cancelled_at":  transfer.CancelledAt,
			"status_reason": transfer.StatusReason,
			"version":       transfer.Version,
			"updated_at":    transfer.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock transfer was modified by another transaction")
	}
	return nil
}

// Count counts transfers
func (r *GormStockTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormStockTransferRepository implements StockTransferRepository
var _ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
