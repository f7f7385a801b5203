package export

import (
	"bytes"
	"fmt"

	"github.com/hms/backend/internal/application/report"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// ExcelExporter renders report rows into XLSX workbooks using excelize
type ExcelExporter struct{}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// PaymentSummaryWorkbook renders a payment summary sheet
func (e *ExcelExporter) PaymentSummaryWorkbook(title string, rows []report.PaymentSummaryRow) ([]byte, error) {
	f, err := newWorkbook(title, []string{"Method", "Reference Type", "Count", "Total Amount"})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, row := range rows {
		line := i + 3
		setRow(f, line,
			string(row.Method),
			string(row.ReferenceType),
			row.Count,
			amountCell(row.TotalAmount.StringFixed(2)),
		)
	}
	return workbookBytes(f)
}

// SalesSummaryWorkbook renders a per-day sales sheet
func (e *ExcelExporter) SalesSummaryWorkbook(title string, rows []report.SalesSummaryRow) ([]byte, error) {
	f, err := newWorkbook(title, []string{"Day", "Sales", "Total Amount"})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, row := range rows {
		line := i + 3
		setRow(f, line,
			row.Day.Format("2006-01-02"),
			row.Count,
			amountCell(row.TotalAmount.StringFixed(2)),
		)
	}
	return workbookBytes(f)
}

// StockLevelWorkbook renders a stock level sheet
func (e *ExcelExporter) StockLevelWorkbook(title string, rows []report.StockLevelRow) ([]byte, error) {
	f, err := newWorkbook(title, []string{"Code", "Product", "On Hand", "Minimum", "Below Min"})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, row := range rows {
		line := i + 3
		belowMin := ""
		if row.BelowMin {
			belowMin = "YES"
		}
		setRow(f, line,
			row.ProductCode,
			row.ProductName,
			row.QuantityOnHand,
			row.MinQuantity,
			belowMin,
		)
	}
	return workbookBytes(f)
}

// newWorkbook creates a workbook with a bold title in row 1 and the
// column headings in row 2
func newWorkbook(title string, headings []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		f.Close()
		return nil, err
	}

	f.SetCellValue(sheetName, "A1", title)
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(headings))
		f.SetCellStyle(sheetName, "A1", lastCol+"2", style)
	}

	for i, h := range headings {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		f.SetCellValue(sheetName, col+"2", h)
	}
	return f, nil
}

// amountCell marks a value that should keep its decimal string form
type amountCell string

func setRow(f *excelize.File, line int, values ...interface{}) {
	for i, v := range values {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		cell := fmt.Sprintf("%s%d", col, line)
		if amount, ok := v.(amountCell); ok {
			f.SetCellValue(sheetName, cell, string(amount))
			continue
		}
		f.SetCellValue(sheetName, cell, v)
	}
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure ExcelExporter implements report.Exporter
var _ report.Exporter = (*ExcelExporter)(nil)
