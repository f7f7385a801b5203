package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var patientSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"record_number": true,
	"first_name":    true,
	"last_name":     true,
}

// GormPatientRepository implements patient.PatientRepository using GORM
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new GormPatientRepository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// FindByID finds a patient by ID. Returns nil when not found.
func (r *GormPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByRecordNumber finds a patient by medical record number
func (r *GormPatientRepository) FindByRecordNumber(ctx context.Context, recordNumber string) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "record_number = ?", recordNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindAll lists patients, with an optional name/record-number search
func (r *GormPatientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]patient.Patient, error) {
	var patients []patient.Patient
	query := r.searchQuery(ctx, filter)
	query = applyFilter(query, filter, patientSortFields, "last_name")

	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// ExistsByPhone reports whether another patient already uses the phone
// number. excludeID skips the patient being updated.
func (r *GormPatientRepository) ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	if phone == "" {
		return false, nil
	}
	var count int64
	query := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("phone = ?", phone)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a patient
func (r *GormPatientRepository) Save(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Count counts patients matching the filter
func (r *GormPatientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.searchQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPatientRepository) searchQuery(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&patient.Patient{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR record_number ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormPatientRepository implements PatientRepository
var _ patient.PatientRepository = (*GormPatientRepository)(nil)
