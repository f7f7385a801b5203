package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hms/backend/internal/application/registry"
	"github.com/hms/backend/internal/domain/center"
)

// CenterHandler exposes hospital centers and staff assignments
type CenterHandler struct {
	BaseHandler
	centerService *registry.CenterService
}

// NewCenterHandler creates a new CenterHandler
func NewCenterHandler(centerService *registry.CenterService) *CenterHandler {
	return &CenterHandler{centerService: centerService}
}

// RegisterRoutes registers center and staff endpoints
func (h *CenterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/centers")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/staff", h.ListStaff)
	g.POST("/:id/staff", h.AssignStaff)
	g.DELETE("/:id/staff/:assignmentId", h.RemoveStaff)
}

// Create adds a hospital center
func (h *CenterHandler) Create(c *gin.Context) {
	var req registry.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.centerService.CreateCenter(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one center
func (h *CenterHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid center ID")
		return
	}

	resp, err := h.centerService.GetCenter(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns all centers
func (h *CenterHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	centers, err := h.centerService.ListCenters(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, centers)
}

// AssignStaffBody is the body for a staff assignment
type AssignStaffBody struct {
	UserID uuid.UUID        `json:"user_id" binding:"required"`
	Role   center.StaffRole `json:"role" binding:"required"`
}

// AssignStaff gives a user a role at the center
func (h *CenterHandler) AssignStaff(c *gin.Context) {
	centerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid center ID")
		return
	}

	var req AssignStaffBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.centerService.AssignStaff(c.Request.Context(), registry.AssignStaffRequest{
		UserID:   req.UserID,
		CenterID: centerID,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemoveStaff deletes a staff assignment
func (h *CenterHandler) RemoveStaff(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	if err := h.centerService.RemoveStaff(c.Request.Context(), assignmentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListStaff returns the staff assignments at the center
func (h *CenterHandler) ListStaff(c *gin.Context) {
	centerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid center ID")
		return
	}

	staff, err := h.centerService.ListStaff(c.Request.Context(), centerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}
