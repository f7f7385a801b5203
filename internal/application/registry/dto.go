package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/shopspring/decimal"
)

// RegisterPatientRequest carries the data to register a patient
type RegisterPatientRequest struct {
	RecordNumber string         `json:"record_number" binding:"required"`
	FirstName    string         `json:"first_name" binding:"required"`
	LastName     string         `json:"last_name" binding:"required"`
	Gender       patient.Gender `json:"gender"`
	BirthDate    *time.Time     `json:"birth_date"`
	Phone        string         `json:"phone"`
	Address      string         `json:"address"`
	CenterID     uuid.UUID      `json:"center_id" binding:"required"`
}

// UpdatePatientContactRequest carries new contact details
type UpdatePatientContactRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
}

// PatientResponse is the read model for a patient
type PatientResponse struct {
	ID           uuid.UUID      `json:"id"`
	RecordNumber string         `json:"record_number"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	FullName     string         `json:"full_name"`
	Gender       patient.Gender `json:"gender,omitempty"`
	BirthDate    *time.Time     `json:"birth_date,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Address      string         `json:"address,omitempty"`
	CenterID     uuid.UUID      `json:"center_id"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ToPatientResponse maps a domain patient to its read model
func ToPatientResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:           p.ID,
		RecordNumber: p.RecordNumber,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		FullName:     p.FullName(),
		Gender:       p.Gender,
		BirthDate:    p.BirthDate,
		Phone:        p.Phone,
		Address:      p.Address,
		CenterID:     p.CenterID,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
	}
}

// ToPatientResponses maps a slice of patients
func ToPatientResponses(patients []patient.Patient) []PatientResponse {
	out := make([]PatientResponse, len(patients))
	for i := range patients {
		out[i] = ToPatientResponse(&patients[i])
	}
	return out
}

// CreateProductRequest carries the data to create a catalog product
type CreateProductRequest struct {
	Code      string          `json:"code" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateProductPriceRequest carries a new catalog price
type UpdateProductPriceRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// ProductResponse is the read model for a catalog product
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToProductResponse maps a domain product to its read model
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Unit:      p.Unit,
		UnitPrice: p.UnitPrice,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

// ToProductResponses maps a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CreateCenterRequest carries the data to create a hospital center
type CreateCenterRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// CenterResponse is the read model for a hospital center
type CenterResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCenterResponse maps a domain center to its read model
func ToCenterResponse(c *center.HospitalCenter) CenterResponse {
	return CenterResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		City:      c.City,
		Address:   c.Address,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

// ToCenterResponses maps a slice of centers
func ToCenterResponses(centers []center.HospitalCenter) []CenterResponse {
	out := make([]CenterResponse, len(centers))
	for i := range centers {
		out[i] = ToCenterResponse(&centers[i])
	}
	return out
}

// AssignStaffRequest carries a staff role assignment
type AssignStaffRequest struct {
	UserID   uuid.UUID        `json:"user_id" binding:"required"`
	CenterID uuid.UUID        `json:"center_id" binding:"required"`
	Role     center.StaffRole `json:"role" binding:"required"`
}

// StaffAssignmentResponse is the read model for a staff assignment
type StaffAssignmentResponse struct {
	ID       uuid.UUID        `json:"id"`
	UserID   uuid.UUID        `json:"user_id"`
	CenterID uuid.UUID        `json:"center_id"`
	Role     center.StaffRole `json:"role"`
}

// ToStaffAssignmentResponse maps a domain assignment to its read model
func ToStaffAssignmentResponse(a *center.StaffAssignment) StaffAssignmentResponse {
	return StaffAssignmentResponse{
		ID:       a.ID,
		UserID:   a.UserID,
		CenterID: a.CenterID,
		Role:     a.Role,
	}
}

// ToStaffAssignmentResponses maps a slice of assignments
func ToStaffAssignmentResponses(assignments []center.StaffAssignment) []StaffAssignmentResponse {
	out := make([]StaffAssignmentResponse, len(assignments))
	for i := range assignments {
		out[i] = ToStaffAssignmentResponse(&assignments[i])
	}
	return out
}
