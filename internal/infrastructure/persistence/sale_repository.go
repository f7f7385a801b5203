package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/sales"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var saleSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"sale_number":  true,
	"sold_at":      true,
	"final_amount": true,
}

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its lines by ID. Returns nil when not found.
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// FindByNumber finds a sale by its document number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, saleNumber string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "sale_number = ?", saleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// FindByCenter lists a center's sales
func (r *GormSaleRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var list []sales.Sale
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Preload("Items").
		Where("center_id = ?", centerID)
	query = applyFilter(query, filter, saleSortFields, "sold_at")

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByPatient lists a patient's purchase history
func (r *GormSaleRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var list []sales.Sale
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Preload("Items").
		Where("patient_id = ?", patientID)
	query = applyFilter(query, filter, saleSortFields, "sold_at")

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByDateRange lists a center's sales within [from, to)
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, centerID uuid.UUID, from, to time.Time, filter shared.Filter) ([]sales.Sale, error) {
	var list []sales.Sale
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Preload("Items").
		Where("center_id = ? AND sold_at >= ? AND sold_at < ?", centerID, from, to)
	query = applyFilter(query, filter, saleSortFields, "sold_at")

	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountByDay counts sales recorded on the given calendar day (UTC)
func (r *GormSaleRepository) CountByDay(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("sold_at >= ? AND sold_at < ?", start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale together with its lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// SaveWithLock saves with optimistic locking (checks version). Lines
// never change after creation, so only the header row is updated.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(sale).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]interface{}{
			"payment_status": sale.PaymentStatus,
			"paid_at":        sale.PaidAt,
			"cancel_reason":  sale.CancelReason,
			"cancelled_by":   sale.CancelledBy,
			"cancelled_at":   sale.CancelledAt,
			"version":        sale.Version,
			"updated_at":     sale.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Sale was modified by another transaction")
	}
	return nil
}

// Count counts sales
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.Sale{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
