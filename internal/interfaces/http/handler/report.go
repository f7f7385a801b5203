package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hms/backend/internal/application/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler exposes operational reports and their Excel exports
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes registers report endpoints
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports")
	g.GET("/payments", h.PaymentSummary)
	g.GET("/sales", h.SalesSummary)
	g.GET("/stock", h.StockLevels)
	g.GET("/transfers", h.TransferHistory)
	g.GET("/payments/export", h.ExportPaymentSummary)
	g.GET("/sales/export", h.ExportSalesSummary)
	g.GET("/stock/export", h.ExportStockLevels)
}

// periodQuery bounds a report request. Dates accept RFC3339 or plain
// ISO dates; a bare "to" date is inclusive of that day.
type periodQuery struct {
	CenterID uuid.UUID `form:"center_id" binding:"required"`
	From     string    `form:"from"`
	To       string    `form:"to"`
	BelowMin bool      `form:"below_min"`
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (h *ReportHandler) bindPeriod(c *gin.Context) (report.ReportPeriod, bool, bool) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return report.ReportPeriod{}, false, false
	}

	p := report.ReportPeriod{CenterID: q.CenterID}
	if q.From != "" {
		from, _, err := parseDate(q.From)
		if err != nil {
			h.BadRequest(c, "Invalid 'from' date")
			return report.ReportPeriod{}, false, false
		}
		p.From = from
	}
	if q.To != "" {
		to, dateOnly, err := parseDate(q.To)
		if err != nil {
			h.BadRequest(c, "Invalid 'to' date")
			return report.ReportPeriod{}, false, false
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
		p.To = to
	}
	return p, q.BelowMin, true
}

// PaymentSummary aggregates active payments by method and reference type
func (h *ReportHandler) PaymentSummary(c *gin.Context) {
	p, _, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	rows, err := h.reportService.PaymentSummary(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SalesSummary aggregates settled sales per day
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	p, _, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	rows, err := h.reportService.SalesSummary(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// StockLevels reports a center's stock with below-minimum flagging
func (h *ReportHandler) StockLevels(c *gin.Context) {
	p, belowMin, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	rows, err := h.reportService.StockLevels(c.Request.Context(), p, belowMin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// TransferHistory lists a center's transfers over a period
func (h *ReportHandler) TransferHistory(c *gin.Context) {
	p, _, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	rows, err := h.reportService.TransferHistory(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

func (h *ReportHandler) sendWorkbook(c *gin.Context, data []byte, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportPaymentSummary downloads the payment summary as a workbook
func (h *ReportHandler) ExportPaymentSummary(c *gin.Context) {
	p, _, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportPaymentSummary(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendWorkbook(c, data, filename)
}

// ExportSalesSummary downloads the sales summary as a workbook
func (h *ReportHandler) ExportSalesSummary(c *gin.Context) {
	p, _, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportSalesSummary(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendWorkbook(c, data, filename)
}

// ExportStockLevels downloads the stock report as a workbook
func (h *ReportHandler) ExportStockLevels(c *gin.Context) {
	p, belowMin, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportStockLevels(c.Request.Context(), p, belowMin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendWorkbook(c, data, filename)
}
