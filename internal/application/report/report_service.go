package report

import (
	"context"
	"fmt"
	"time"

	"github.com/hms/backend/internal/domain/shared"
)

// ReportService serves operational reports and their Excel exports
type ReportService struct {
	queries  Queries
	exporter Exporter
}

// NewReportService creates a new ReportService
func NewReportService(queries Queries, exporter Exporter) *ReportService {
	return &ReportService{
		queries:  queries,
		exporter: exporter,
	}
}

func validatePeriod(p ReportPeriod) error {
	if p.To.Before(p.From) {
		return shared.NewDomainError("INVALID_PERIOD", "Period end cannot precede its start")
	}
	return nil
}

// PaymentSummary aggregates active payments by method and reference
// type over a period
func (s *ReportService) PaymentSummary(ctx context.Context, p ReportPeriod) ([]PaymentSummaryRow, error) {
	if err := validatePeriod(p); err != nil {
		return nil, err
	}
	rows, err := s.queries.PaymentSummary(ctx, p.CenterID, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment summary: %w", err)
	}
	return rows, nil
}

// SalesSummary aggregates settled sales per day over a period
func (s *ReportService) SalesSummary(ctx context.Context, p ReportPeriod) ([]SalesSummaryRow, error) {
	if err := validatePeriod(p); err != nil {
		return nil, err
	}
	rows, err := s.queries.SalesSummary(ctx, p.CenterID, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales summary: %w", err)
	}
	return rows, nil
}

// StockLevels lists a center's stock, optionally only records under
// their minimum threshold
func (s *ReportService) StockLevels(ctx context.Context, p ReportPeriod, belowMinOnly bool) ([]StockLevelRow, error) {
	rows, err := s.queries.StockLevels(ctx, p.CenterID, belowMinOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to build stock report: %w", err)
	}
	return rows, nil
}

// TransferHistory lists a center's transfers over a period
func (s *ReportService) TransferHistory(ctx context.Context, p ReportPeriod) ([]TransferHistoryRow, error) {
	if err := validatePeriod(p); err != nil {
		return nil, err
	}
	rows, err := s.queries.TransferHistory(ctx, p.CenterID, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer history: %w", err)
	}
	return rows, nil
}

// ExportPaymentSummary renders the payment summary as an Excel workbook
func (s *ReportService) ExportPaymentSummary(ctx context.Context, p ReportPeriod) ([]byte, string, error) {
	rows, err := s.PaymentSummary(ctx, p)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Payments %s to %s", p.From.Format("2006-01-02"), p.To.Format("2006-01-02"))
	data, err := s.exporter.PaymentSummaryWorkbook(title, rows)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	return data, exportFileName("payments", p.From, p.To), nil
}

// ExportSalesSummary renders the sales summary as an Excel workbook
func (s *ReportService) ExportSalesSummary(ctx context.Context, p ReportPeriod) ([]byte, string, error) {
	rows, err := s.SalesSummary(ctx, p)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Sales %s to %s", p.From.Format("2006-01-02"), p.To.Format("2006-01-02"))
	data, err := s.exporter.SalesSummaryWorkbook(title, rows)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	return data, exportFileName("sales", p.From, p.To), nil
}

// ExportStockLevels renders the stock report as an Excel workbook
func (s *ReportService) ExportStockLevels(ctx context.Context, p ReportPeriod, belowMinOnly bool) ([]byte, string, error) {
	rows, err := s.StockLevels(ctx, p, belowMinOnly)
	if err != nil {
		return nil, "", err
	}
	data, err := s.exporter.StockLevelWorkbook("Stock levels", rows)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	now := time.Now()
	return data, exportFileName("stock", now, now), nil
}

func exportFileName(prefix string, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, from.Format("20060102"), to.Format("20060102"))
}
