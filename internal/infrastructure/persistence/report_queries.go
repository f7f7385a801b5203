package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/application/report"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormReportQueries implements report.Queries with SQL aggregates.
// Sums and counts happen in the database, never in memory.
type GormReportQueries struct {
	db *gorm.DB
}

// NewGormReportQueries creates a new GormReportQueries
func NewGormReportQueries(db *gorm.DB) *GormReportQueries {
	return &GormReportQueries{db: db}
}

// PaymentSummary aggregates active payments by method and reference type
func (q *GormReportQueries) PaymentSummary(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]report.PaymentSummaryRow, error) {
	var rows []report.PaymentSummaryRow
	err := q.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Select("method, reference_type, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
		Where("center_id = ? AND status = ? AND payment_date >= ? AND payment_date < ?",
			centerID, billing.PaymentStatusActive, from, to).
		Group("method, reference_type").
		Order("method, reference_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesSummary aggregates settled sales per calendar day
func (q *GormReportQueries) SalesSummary(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]report.SalesSummaryRow, error) {
	var rows []report.SalesSummaryRow
	err := q.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Select("DATE_TRUNC('day', sold_at) as day, COUNT(*) as count, COALESCE(SUM(final_amount), 0) as total_amount").
		Where("center_id = ? AND payment_status = ? AND sold_at >= ? AND sold_at < ?",
			centerID, sales.SalePaymentPaid, from, to).
		Group("DATE_TRUNC('day', sold_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StockLevels joins stock records with their catalog products
func (q *GormReportQueries) StockLevels(ctx context.Context, centerID uuid.UUID, belowMinOnly bool) ([]report.StockLevelRow, error) {
	query := q.db.WithContext(ctx).
		Table("stock_items").
		Select(`products.code as product_code,
			products.name as product_name,
			stock_items.quantity_on_hand,
			stock_items.min_quantity,
			(stock_items.min_quantity > 0 AND stock_items.quantity_on_hand < stock_items.min_quantity) as below_min`).
		Joins("JOIN products ON products.id = stock_items.product_id").
		Where("stock_items.center_id = ?", centerID)

	if belowMinOnly {
		query = query.Where("stock_items.min_quantity > 0 AND stock_items.quantity_on_hand < stock_items.min_quantity")
	}

	var rows []report.StockLevelRow
	if err := query.Order("products.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TransferHistory lists transfers touching a center with both center names resolved
func (q *GormReportQueries) TransferHistory(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]report.TransferHistoryRow, error) {
	var rows []report.TransferHistoryRow
	err := q.db.WithContext(ctx).
		Table("stock_transfers").
		Select(`stock_transfers.transfer_number,
			src.name as source_center,
			dst.name as dest_center,
			stock_transfers.status,
			(SELECT COUNT(*) FROM stock_transfer_items WHERE stock_transfer_items.transfer_id = stock_transfers.id) as item_count,
			stock_transfers.requested_at,
			stock_transfers.completed_at`).
		Joins("JOIN hospital_centers src ON src.id = stock_transfers.source_center_id").
		Joins("JOIN hospital_centers dst ON dst.id = stock_transfers.dest_center_id").
		Where("(stock_transfers.source_center_id = ? OR stock_transfers.dest_center_id = ?)", centerID, centerID).
		Where("stock_transfers.requested_at >= ? AND stock_transfers.requested_at < ?", from, to).
		Order("stock_transfers.requested_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormReportQueries implements report.Queries
var _ report.Queries = (*GormReportQueries)(nil)
