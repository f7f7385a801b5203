package center

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// HospitalCenter represents a physical hospital location. Stock,
// payments and sales are scoped to exactly one center.
type HospitalCenter struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Code    string `gorm:"type:varchar(20);not null;uniqueIndex"`
	City    string `gorm:"type:varchar(100)"`
	Address string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(30)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (HospitalCenter) TableName() string {
	return "hospital_centers"
}

// NewHospitalCenter creates a new active hospital center
func NewHospitalCenter(code, name, city string) (*HospitalCenter, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Center code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Center name cannot be empty")
	}

	return &HospitalCenter{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		City:              city,
		Active:            true,
	}, nil
}

// Deactivate closes the center for new operations
func (c *HospitalCenter) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// StaffRole is the role a staff member holds at a center
type StaffRole string

const (
	RoleSuperAdmin      StaffRole = "SUPER_ADMIN"
	RolePharmacyManager StaffRole = "PHARMACY_MANAGER"
	RoleCashier         StaffRole = "CASHIER"
	RoleNurse           StaffRole = "NURSE"
	RoleReceptionist    StaffRole = "RECEPTIONIST"
)

// IsValid returns true if the role is a known staff role
func (r StaffRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RolePharmacyManager, RoleCashier, RoleNurse, RoleReceptionist:
		return true
	}
	return false
}

// CanApproveTransfers returns true for roles allowed to approve stock
// leaving their center.
func (r StaffRole) CanApproveTransfers() bool {
	return r == RoleSuperAdmin || r == RolePharmacyManager
}

// StaffAssignment links a user to a center with a role. Transfer
// approval authorization is resolved against these rows.
type StaffAssignment struct {
	shared.BaseEntity
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_staff_user_center,priority:1"`
	CenterID uuid.UUID `gorm:"type:uuid;not null;index:idx_staff_user_center,priority:2"`
	Role     StaffRole `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (StaffAssignment) TableName() string {
	return "staff_assignments"
}

// NewStaffAssignment assigns a user to a center with the given role
func NewStaffAssignment(userID, centerID uuid.UUID, role StaffRole) (*StaffAssignment, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown staff role")
	}

	return &StaffAssignment{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		CenterID:   centerID,
		Role:       role,
	}, nil
}
