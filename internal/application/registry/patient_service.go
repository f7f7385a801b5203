package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PatientService manages the patient registry. Phone numbers are kept
// unique across active records; the checks run here rather than in the
// aggregate because they need repository access.
type PatientService struct {
	patientRepo patient.PatientRepository
	centerRepo  center.HospitalCenterRepository
	logger      *zap.Logger
}

// NewPatientService creates a new PatientService
func NewPatientService(
	patientRepo patient.PatientRepository,
	centerRepo center.HospitalCenterRepository,
	logger *zap.Logger,
) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		centerRepo:  centerRepo,
		logger:      logger.Named("patient_service"),
	}
}

// RegisterPatient creates a patient record after checking the record
// number and phone are not already taken
func (s *PatientService) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*PatientResponse, error) {
	c, err := s.centerRepo.FindByID(ctx, req.CenterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return nil, shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found or inactive")
	}

	existing, err := s.patientRepo.FindByRecordNumber(ctx, req.RecordNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check record number: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_RECORD_NUMBER", "Record number is already in use")
	}

	if req.Phone != "" {
		taken, err := s.patientRepo.ExistsByPhone(ctx, req.Phone, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return nil, shared.NewDomainError("DUPLICATE_PHONE", "Phone number is already registered to another patient")
		}
	}

	p, err := patient.NewPatient(req.RecordNumber, req.FirstName, req.LastName, req.Gender, req.CenterID)
	if err != nil {
		return nil, err
	}
	p.BirthDate = req.BirthDate
	p.Phone = req.Phone
	p.Address = req.Address

	if err := s.patientRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save patient: %w", err)
	}

	s.logger.Info("patient registered",
		zap.String("patient_id", p.ID.String()),
		zap.String("record_number", p.RecordNumber))

	resp := ToPatientResponse(p)
	return &resp, nil
}

// UpdateContact changes a patient's phone and address. The phone
// uniqueness check excludes the patient's own row.
func (s *PatientService) UpdateContact(ctx context.Context, req UpdatePatientContactRequest) (*PatientResponse, error) {
	p, err := s.patientRepo.FindByID(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PATIENT_NOT_FOUND", "Patient not found")
	}

	if req.Phone != "" && req.Phone != p.Phone {
		taken, err := s.patientRepo.ExistsByPhone(ctx, req.Phone, &p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return nil, shared.NewDomainError("DUPLICATE_PHONE", "Phone number is already registered to another patient")
		}
	}

	p.UpdateContact(req.Phone, req.Address)

	if err := s.patientRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save patient: %w", err)
	}

	resp := ToPatientResponse(p)
	return &resp, nil
}

// DeactivatePatient archives a patient record. Already-archived
// records are left untouched.
func (s *PatientService) DeactivatePatient(ctx context.Context, id uuid.UUID) (*PatientResponse, error) {
	p, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PATIENT_NOT_FOUND", "Patient not found")
	}
	if !p.Active {
		return nil, shared.NewDomainError("PATIENT_INACTIVE", "Patient record is already deactivated")
	}

	p.Deactivate()

	if err := s.patientRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save patient: %w", err)
	}

	s.logger.Info("patient deactivated", zap.String("patient_id", p.ID.String()))

	resp := ToPatientResponse(p)
	return &resp, nil
}

// GetPatient returns one patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*PatientResponse, error) {
	p, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PATIENT_NOT_FOUND", "Patient not found")
	}
	resp := ToPatientResponse(p)
	return &resp, nil
}

// ListPatients returns a page of the registry, with the total count
// for pagination
func (s *PatientService) ListPatients(ctx context.Context, filter shared.Filter) ([]PatientResponse, int64, error) {
	patients, err := s.patientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	total, err := s.patientRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return ToPatientResponses(patients), total, nil
}
