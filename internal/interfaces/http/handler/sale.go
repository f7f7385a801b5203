package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/hms/backend/internal/application/sales"
	"github.com/hms/backend/internal/domain/billing"
)

// SaleHandler exposes the pharmacy sale workflow
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers sale endpoints
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/sales")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/settle", h.Settle)
	g.POST("/:id/cancel", h.Cancel)

	rg.GET("/centers/:id/sales", h.ListByCenter)
	rg.GET("/patients/:id/sales", h.ListByPatient)
}

// Create rings up a sale, decrementing stock per line
func (h *SaleHandler) Create(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// SettleSaleBody is the body for a sale settlement
type SettleSaleBody struct {
	Method    billing.PaymentMethod `json:"method"`
	SettledBy uuid.UUID             `json:"settled_by" binding:"required"`
}

// Settle marks a pending sale as paid and records the payment
func (h *SaleHandler) Settle(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	var req SettleSaleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.saleService.SettleSale(c.Request.Context(), salesapp.SettleSaleRequest{
		SaleID:    id,
		Method:    req.Method,
		SettledBy: req.SettledBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelSaleBody is the body for a sale cancellation
type CancelSaleBody struct {
	Reason      string    `json:"reason" binding:"required,notblank"`
	CancelledBy uuid.UUID `json:"cancelled_by" binding:"required"`
}

// Cancel voids a sale and restores its stock
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	var req CancelSaleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.saleService.CancelSale(c.Request.Context(), salesapp.CancelSaleRequest{
		SaleID:      id,
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one sale with its lines
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	resp, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCenter returns the sales rung up at a center
func (h *SaleHandler) ListByCenter(c *gin.Context) {
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

	sales, err := h.saleService.ListSalesByCenter(c.Request.Context(), centerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sales)
}

// ListByPatient returns a patient's purchase history
func (h *SaleHandler) ListByPatient(c *gin.Context) {
	patientID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sales, err := h.saleService.ListSalesByPatient(c.Request.Context(), patientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sales)
}
