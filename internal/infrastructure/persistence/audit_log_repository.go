package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.AuditLogRepository using GORM.
// The audit trail is append-only.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// FindByEntity lists audit entries written for one entity, newest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]audit.AuditLog, error) {
	var entries []audit.AuditLog
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("occurred_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByActor lists audit entries for the actions of one user
func (r *GormAuditLogRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]audit.AuditLog, error) {
	var entries []audit.AuditLog
	query := r.db.WithContext(ctx).Model(&audit.AuditLog{}).
		Where("actor_id = ?", actorID)
	query = applyFilter(query, filter, map[string]bool{
		"id": true, "created_at": true, "occurred_at": true, "action": true,
	}, "occurred_at")

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save appends an entry to the audit trail
func (r *GormAuditLogRepository) Save(ctx context.Context, entry *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Ensure GormAuditLogRepository implements AuditLogRepository
var _ audit.AuditLogRepository = (*GormAuditLogRepository)(nil)
