package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/care"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var careSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"started_at": true,
	"status":     true,
}

// GormCareEpisodeRepository implements care.CareEpisodeRepository using GORM
type GormCareEpisodeRepository struct {
	db *gorm.DB
}

// NewGormCareEpisodeRepository creates a new GormCareEpisodeRepository
func NewGormCareEpisodeRepository(db *gorm.DB) *GormCareEpisodeRepository {
	return &GormCareEpisodeRepository{db: db}
}

// FindByID finds a care episode by ID. Returns nil when not found.
func (r *GormCareEpisodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*care.CareEpisode, error) {
	var episode care.CareEpisode
	if err := r.db.WithContext(ctx).First(&episode, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// FindByPatient lists a patient's care episodes
func (r *GormCareEpisodeRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]care.CareEpisode, error) {
	var episodes []care.CareEpisode
	query := r.db.WithContext(ctx).Model(&care.CareEpisode{}).
		Where("patient_id = ?", patientID)
	query = applyFilter(query, filter, careSortFields, "started_at")

	if err := query.Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// FindOpenByCenter lists still-open episodes at a center
func (r *GormCareEpisodeRepository) FindOpenByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]care.CareEpisode, error) {
	var episodes []care.CareEpisode
	query := r.db.WithContext(ctx).Model(&care.CareEpisode{}).
		Where("center_id = ? AND status = ?", centerID, care.EpisodeStatusOpen)
	query = applyFilter(query, filter, careSortFields, "started_at")

	if err := query.Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// Save creates or updates a care episode
func (r *GormCareEpisodeRepository) Save(ctx context.Context, episode *care.CareEpisode) error {
	return r.db.WithContext(ctx).Save(episode).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCareEpisodeRepository) SaveWithLock(ctx context.Context, episode *care.CareEpisode) error {
	result := r.db.WithContext(ctx).
		Model(episode).
		Where("id = ? AND version = ?", episode.ID, episode.Version-1).
		Updates(map[string]interface{}{
			"total_cost":        episode.TotalCost,
			"amount_paid":       episode.AmountPaid,
			"remaining_balance": episode.RemainingBalance,
			"status":            episode.Status,
			"closed_at":         episode.ClosedAt,
			"version":           episode.Version,
			"updated_at":        episode.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Care episode was modified by another transaction")
	}
	return nil
}

// Ensure GormCareEpisodeRepository implements CareEpisodeRepository
var _ care.CareEpisodeRepository = (*GormCareEpisodeRepository)(nil)

// GormExaminationRepository implements care.ExaminationRepository using GORM
type GormExaminationRepository struct {
	db *gorm.DB
}

// NewGormExaminationRepository creates a new GormExaminationRepository
func NewGormExaminationRepository(db *gorm.DB) *GormExaminationRepository {
	return &GormExaminationRepository{db: db}
}

// FindByID finds an examination by ID. Returns nil when not found.
func (r *GormExaminationRepository) FindByID(ctx context.Context, id uuid.UUID) (*care.Examination, error) {
	var examination care.Examination
	if err := r.db.WithContext(ctx).First(&examination, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &examination, nil
}

// FindByPatient lists a patient's examinations
func (r *GormExaminationRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]care.Examination, error) {
	var examinations []care.Examination
	query := r.db.WithContext(ctx).Model(&care.Examination{}).
		Where("patient_id = ?", patientID)
	query = applyFilter(query, filter, map[string]bool{
		"id": true, "created_at": true, "performed_at": true,
	}, "performed_at")

	if err := query.Find(&examinations).Error; err != nil {
		return nil, err
	}
	return examinations, nil
}

// Save creates or updates an examination
func (r *GormExaminationRepository) Save(ctx context.Context, examination *care.Examination) error {
	return r.db.WithContext(ctx).Save(examination).Error
}

// Ensure GormExaminationRepository implements ExaminationRepository
var _ care.ExaminationRepository = (*GormExaminationRepository)(nil)
