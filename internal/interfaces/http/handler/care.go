package handler

import (
	"github.com/gin-gonic/gin"
	careapp "github.com/hms/backend/internal/application/care"
	"github.com/shopspring/decimal"
)

// CareHandler exposes care episodes and examinations
type CareHandler struct {
	BaseHandler
	careService *careapp.CareService
}

// NewCareHandler creates a new CareHandler
func NewCareHandler(careService *careapp.CareService) *CareHandler {
	return &CareHandler{careService: careService}
}

// RegisterRoutes registers care endpoints
func (h *CareHandler) RegisterRoutes(rg *gin.RouterGroup) {
	episodes := rg.Group("/episodes")
	episodes.POST("", h.OpenEpisode)
	episodes.GET("/:id", h.GetEpisode)
	episodes.PUT("/:id/cost", h.AdjustCost)
	episodes.POST("/:id/close", h.CloseEpisode)

	examinations := rg.Group("/examinations")
	examinations.POST("", h.RecordExamination)

	patients := rg.Group("/patients/:id")
	patients.GET("/episodes", h.ListEpisodesByPatient)
	patients.GET("/examinations", h.ListExaminationsByPatient)

	rg.GET("/centers/:id/episodes/open", h.ListOpenEpisodesByCenter)
}

// OpenEpisode opens a billable episode
func (h *CareHandler) OpenEpisode(c *gin.Context) {
	var req careapp.OpenEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.careService.OpenEpisode(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AdjustCostRequest is the body for re-billing an episode
type AdjustCostRequest struct {
	TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
}

// AdjustCost re-bills an open episode
func (h *CareHandler) AdjustCost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid episode ID")
		return
	}

	var req AdjustCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.careService.AdjustEpisodeCost(c.Request.Context(), careapp.AdjustEpisodeCostRequest{
		EpisodeID: id,
		TotalCost: req.TotalCost,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CloseEpisode ends an episode
func (h *CareHandler) CloseEpisode(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid episode ID")
		return
	}

	resp, err := h.careService.CloseEpisode(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetEpisode returns one episode with its balance
func (h *CareHandler) GetEpisode(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid episode ID")
		return
	}

	resp, err := h.careService.GetEpisode(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListEpisodesByPatient returns a patient's episodes
func (h *CareHandler) ListEpisodesByPatient(c *gin.Context) {
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

	episodes, err := h.careService.ListEpisodesByPatient(c.Request.Context(), patientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, episodes)
}

// ListOpenEpisodesByCenter returns the open episodes at a center
func (h *CareHandler) ListOpenEpisodesByCenter(c *gin.Context) {
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

	episodes, err := h.careService.ListOpenEpisodesByCenter(c.Request.Context(), centerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, episodes)
}

// RecordExamination records a billed medical act
func (h *CareHandler) RecordExamination(c *gin.Context) {
	var req careapp.RecordExaminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.careService.RecordExamination(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListExaminationsByPatient returns a patient's examinations
func (h *CareHandler) ListExaminationsByPatient(c *gin.Context) {
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

	examinations, err := h.careService.ListExaminationsByPatient(c.Request.Context(), patientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, examinations)
}
