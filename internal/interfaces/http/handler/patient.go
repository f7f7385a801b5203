package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hms/backend/internal/application/registry"
)

// PatientHandler exposes the patient registry
type PatientHandler struct {
	BaseHandler
	patientService *registry.PatientService
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(patientService *registry.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// RegisterRoutes registers patient endpoints
func (h *PatientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/patients")
	g.POST("", h.Register)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/contact", h.UpdateContact)
	g.POST("/:id/deactivate", h.Deactivate)
}

// Register creates a patient record
func (h *PatientHandler) Register(c *gin.Context) {
	var req registry.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.patientService.RegisterPatient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateContactRequest is the body for a contact update
type UpdateContactRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateContact changes a patient's phone and address
func (h *PatientHandler) UpdateContact(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.patientService.UpdateContact(c.Request.Context(), registry.UpdatePatientContactRequest{
		PatientID: id,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate archives a patient record
func (h *PatientHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	resp, err := h.patientService.DeactivatePatient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one patient
func (h *PatientHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	resp, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a page of the registry
func (h *PatientHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	patients, total, err := h.patientService.ListPatients(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, patients, total, filter.Page, filter.PageSize)
}
