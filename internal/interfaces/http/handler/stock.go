package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/hms/backend/internal/application/inventory"
)

// StockHandler exposes per-center stock records and the movement ledger
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers stock endpoints
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/stock")
	g.GET("/lookup", h.Lookup)
	g.POST("/adjust", h.Adjust)
	g.GET("/items/:id/movements", h.ListMovements)

	rg.GET("/centers/:id/stock", h.ListByCenter)
	rg.GET("/centers/:id/stock/below-min", h.ListBelowMin)
}

// stockLookupQuery identifies a stock record by product and center
type stockLookupQuery struct {
	ProductID uuid.UUID `form:"product_id" binding:"required"`
	CenterID  uuid.UUID `form:"center_id" binding:"required"`
}

// Lookup returns the stock record for a product at a center
func (h *StockHandler) Lookup(c *gin.Context) {
	var q stockLookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.GetStock(c.Request.Context(), q.ProductID, q.CenterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjust corrects a stock count with a reason
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCenter returns the stock records at a center
func (h *StockHandler) ListByCenter(c *gin.Context) {
	centerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid center ID")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.stockService.ListStockByCenter(c.Request.Context(), centerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListBelowMin returns the stock records under their minimum threshold
func (h *StockHandler) ListBelowMin(c *gin.Context) {
	centerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid center ID")
		return
	}

	items, err := h.stockService.ListBelowMin(c.Request.Context(), centerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListMovements returns the ledger entries for a stock item
func (h *StockHandler) ListMovements(c *gin.Context) {
	stockItemID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid stock item ID")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.stockService.ListMovements(c.Request.Context(), stockItemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}
