package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var centerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"city":       true,
}

// GormHospitalCenterRepository implements center.HospitalCenterRepository using GORM
type GormHospitalCenterRepository struct {
	db *gorm.DB
}

// NewGormHospitalCenterRepository creates a new GormHospitalCenterRepository
func NewGormHospitalCenterRepository(db *gorm.DB) *GormHospitalCenterRepository {
	return &GormHospitalCenterRepository{db: db}
}

// FindByID finds a hospital center by ID. Returns nil when not found.
func (r *GormHospitalCenterRepository) FindByID(ctx context.Context, id uuid.UUID) (*center.HospitalCenter, error) {
	var c center.HospitalCenter
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindByCode finds a hospital center by its short code
func (r *GormHospitalCenterRepository) FindByCode(ctx context.Context, code string) (*center.HospitalCenter, error) {
	var c center.HospitalCenter
	if err := r.db.WithContext(ctx).First(&c, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindAll lists hospital centers
func (r *GormHospitalCenterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]center.HospitalCenter, error) {
	var centers []center.HospitalCenter
	query := r.db.WithContext(ctx).Model(&center.HospitalCenter{})
	query = applyFilter(query, filter, centerSortFields, "name")

	if err := query.Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// Save creates or updates a hospital center
func (r *GormHospitalCenterRepository) Save(ctx context.Context, c *center.HospitalCenter) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Ensure GormHospitalCenterRepository implements HospitalCenterRepository
var _ center.HospitalCenterRepository = (*GormHospitalCenterRepository)(nil)

// GormStaffAssignmentRepository implements center.StaffAssignmentRepository using GORM
type GormStaffAssignmentRepository struct {
	db *gorm.DB
}

// NewGormStaffAssignmentRepository creates a new GormStaffAssignmentRepository
func NewGormStaffAssignmentRepository(db *gorm.DB) *GormStaffAssignmentRepository {
	return &GormStaffAssignmentRepository{db: db}
}

// FindByUserAndCenter finds the role assignment a user holds at a
// center. Returns nil when the user has no assignment there.
func (r *GormStaffAssignmentRepository) FindByUserAndCenter(ctx context.Context, userID, centerID uuid.UUID) (*center.StaffAssignment, error) {
	var assignment center.StaffAssignment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND center_id = ?", userID, centerID).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByCenter lists all staff assignments at a center
func (r *GormStaffAssignmentRepository) FindByCenter(ctx context.Context, centerID uuid.UUID) ([]center.StaffAssignment, error) {
	var assignments []center.StaffAssignment
	if err := r.db.WithContext(ctx).
		Where("center_id = ?", centerID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Save creates or updates a staff assignment
func (r *GormStaffAssignmentRepository) Save(ctx context.Context, assignment *center.StaffAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// Delete removes a staff assignment
func (r *GormStaffAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&center.StaffAssignment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("ASSIGNMENT_NOT_FOUND", "Staff assignment not found")
	}
	return nil
}

// Ensure GormStaffAssignmentRepository implements StaffAssignmentRepository
var _ center.StaffAssignmentRepository = (*GormStaffAssignmentRepository)(nil)
