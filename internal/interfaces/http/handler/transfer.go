package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/hms/backend/internal/application/inventory"
)

// TransferHandler exposes the stock transfer workflow
type TransferHandler struct {
	BaseHandler
	transferService *inventoryapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *inventoryapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers transfer endpoints
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/transfers")
	g.POST("", h.Request)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/complete", h.Complete)

	rg.GET("/centers/:id/transfers", h.ListByCenter)
}

// Request opens a transfer between two centers
func (h *TransferHandler) Request(c *gin.Context) {
	var req inventoryapp.RequestTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.transferService.RequestTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// TransferDecisionBody is the body for transfer workflow actions
type TransferDecisionBody struct {
	ActorID uuid.UUID `json:"actor_id" binding:"required"`
	Reason  string    `json:"reason"`
}

func (h *TransferHandler) decision(c *gin.Context) (inventoryapp.TransferDecisionRequest, bool) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return inventoryapp.TransferDecisionRequest{}, false
	}

	var req TransferDecisionBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return inventoryapp.TransferDecisionRequest{}, false
	}

	return inventoryapp.TransferDecisionRequest{
		TransferID: id,
		ActorID:    req.ActorID,
		Reason:     req.Reason,
	}, true
}

// Approve moves a requested transfer to APPROVED
func (h *TransferHandler) Approve(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	resp, err := h.transferService.ApproveTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject refuses a pending transfer
func (h *TransferHandler) Reject(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	resp, err := h.transferService.RejectTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel withdraws a pending transfer
func (h *TransferHandler) Cancel(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	resp, err := h.transferService.CancelTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete executes an approved transfer, moving the stock
func (h *TransferHandler) Complete(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	resp, err := h.transferService.CompleteTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one transfer with its lines
func (h *TransferHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	resp, err := h.transferService.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCenter returns the transfers touching a center, as source or
// destination
func (h *TransferHandler) ListByCenter(c *gin.Context) {
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

	transfers, err := h.transferService.ListTransfersByCenter(c.Request.Context(), centerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}
