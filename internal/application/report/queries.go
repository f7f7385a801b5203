package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queries is the read-side contract the reporting service runs on.
// Implementations aggregate in SQL; the service never loads whole
// tables to sum in memory.
type Queries interface {
	PaymentSummary(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]PaymentSummaryRow, error)
	SalesSummary(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]SalesSummaryRow, error)
	StockLevels(ctx context.Context, centerID uuid.UUID, belowMinOnly bool) ([]StockLevelRow, error)
	TransferHistory(ctx context.Context, centerID uuid.UUID, from, to time.Time) ([]TransferHistoryRow, error)
}

// Exporter renders report rows into a downloadable workbook
type Exporter interface {
	PaymentSummaryWorkbook(title string, rows []PaymentSummaryRow) ([]byte, error)
	SalesSummaryWorkbook(title string, rows []SalesSummaryRow) ([]byte, error)
	StockLevelWorkbook(title string, rows []StockLevelRow) ([]byte, error)
}
