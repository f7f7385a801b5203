package center

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// HospitalCenterRepository provides access to hospital centers
type HospitalCenterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HospitalCenter, error)
	FindByCode(ctx context.Context, code string) (*HospitalCenter, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]HospitalCenter, error)
	Save(ctx context.Context, center *HospitalCenter) error
}

// StaffAssignmentRepository provides access to staff role assignments
type StaffAssignmentRepository interface {
	FindByUserAndCenter(ctx context.Context, userID, centerID uuid.UUID) (*StaffAssignment, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID) ([]StaffAssignment, error)
	Save(ctx context.Context, assignment *StaffAssignment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
