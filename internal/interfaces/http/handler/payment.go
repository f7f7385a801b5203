package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/billing"
)

// PaymentHandler exposes the payment workflow
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers payment endpoints
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/payments")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/by-reference", h.ListByReference)

	rg.GET("/patients/:id/payments", h.ListByPatient)
}

// Create records a payment against a billable reference
func (h *PaymentHandler) Create(c *gin.Context) {
	var req billingapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CancelPaymentBody is the body for a payment cancellation
type CancelPaymentBody struct {
	Reason      string    `json:"reason" binding:"required,notblank"`
	CancelledBy uuid.UUID `json:"cancelled_by" binding:"required"`
}

// Cancel voids a payment and reverses its balance effect
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req CancelPaymentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.CancelPayment(c.Request.Context(), billingapp.CancelPaymentRequest{
		PaymentID:   id,
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	resp, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// referenceQuery identifies a billable reference
type referenceQuery struct {
	ReferenceType billing.ReferenceType `form:"reference_type" binding:"required"`
	ReferenceID   uuid.UUID             `form:"reference_id" binding:"required"`
}

// ListByReference returns all payments against one billable reference
func (h *PaymentHandler) ListByReference(c *gin.Context) {
	var q referenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payments, err := h.paymentService.ListPaymentsByReference(c.Request.Context(), q.ReferenceType, q.ReferenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// ListByPatient returns a patient's payment history
func (h *PaymentHandler) ListByPatient(c *gin.Context) {
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

	payments, err := h.paymentService.ListPaymentsByPatient(c.Request.Context(), patientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
