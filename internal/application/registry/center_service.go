package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CenterService manages hospital centers and the staff role
// assignments that back transfer approval authorization
type CenterService struct {
	centerRepo center.HospitalCenterRepository
	staffRepo  center.StaffAssignmentRepository
	logger     *zap.Logger
}

// NewCenterService creates a new CenterService
func NewCenterService(
	centerRepo center.HospitalCenterRepository,
	staffRepo center.StaffAssignmentRepository,
	logger *zap.Logger,
) *CenterService {
	return &CenterService{
		centerRepo: centerRepo,
		staffRepo:  staffRepo,
		logger:     logger.Named("center_service"),
	}
}

// CreateCenter adds a hospital center. Codes are unique.
func (s *CenterService) CreateCenter(ctx context.Context, req CreateCenterRequest) (*CenterResponse, error) {
	existing, err := s.centerRepo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check center code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "Center code is already in use")
	}

	c, err := center.NewHospitalCenter(req.Code, req.Name, req.City)
	if err != nil {
		return nil, err
	}
	c.Address = req.Address
	c.Phone = req.Phone

	if err := s.centerRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save center: %w", err)
	}

	s.logger.Info("center created",
		zap.String("center_id", c.ID.String()),
		zap.String("code", c.Code))

	resp := ToCenterResponse(c)
	return &resp, nil
}

// GetCenter returns one center by ID
func (s *CenterService) GetCenter(ctx context.Context, id uuid.UUID) (*CenterResponse, error) {
	c, err := s.centerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found")
	}
	resp := ToCenterResponse(c)
	return &resp, nil
}

// ListCenters returns all centers matching the filter
func (s *CenterService) ListCenters(ctx context.Context, filter shared.Filter) ([]CenterResponse, error) {
	centers, err := s.centerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return ToCenterResponses(centers), nil
}

// AssignStaff gives a user a role at a center. A user holds at most
// one role per center, so an existing assignment is replaced.
func (s *CenterService) AssignStaff(ctx context.Context, req AssignStaffRequest) (*StaffAssignmentResponse, error) {
	c, err := s.centerRepo.FindByID(ctx, req.CenterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return nil, shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found or inactive")
	}

	existing, err := s.staffRepo.FindByUserAndCenter(ctx, req.UserID, req.CenterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if existing != nil {
		if err := s.staffRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to replace assignment: %w", err)
		}
	}

	assignment, err := center.NewStaffAssignment(req.UserID, req.CenterID, req.Role)
	if err != nil {
		return nil, err
	}

	if err := s.staffRepo.Save(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	s.logger.Info("staff assigned",
		zap.String("user_id", req.UserID.String()),
		zap.String("center_id", req.CenterID.String()),
		zap.String("role", string(req.Role)))

	resp := ToStaffAssignmentResponse(assignment)
	return &resp, nil
}

// RemoveStaff deletes a staff assignment
func (s *CenterService) RemoveStaff(ctx context.Context, assignmentID uuid.UUID) error {
	if err := s.staffRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}
	s.logger.Info("staff assignment removed", zap.String("assignment_id", assignmentID.String()))
	return nil
}

// ListStaff returns the staff assignments at a center
func (s *CenterService) ListStaff(ctx context.Context, centerID uuid.UUID) ([]StaffAssignmentResponse, error) {
	assignments, err := s.staffRepo.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return ToStaffAssignmentResponses(assignments), nil
}
