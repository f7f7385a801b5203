package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// AuditLog is an append-only record of a sensitive action: payment
// cancellations, stock adjustments, transfer approvals and the like.
type AuditLog struct {
	shared.BaseEntity
	Action     string     `gorm:"type:varchar(100);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CenterID   *uuid.UUID `gorm:"type:uuid;index"`
	Detail     string     `gorm:"type:text"`
	OccurredAt time.Time  `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog records an action against an entity
func NewAuditLog(action, entityType string, entityID, actorID uuid.UUID, occurredAt time.Time) (*AuditLog, error) {
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action cannot be empty")
	}
	if entityType == "" || entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity reference is required")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	return &AuditLog{
		BaseEntity: shared.NewBaseEntity(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: occurredAt,
	}, nil
}

// WithCenter scopes the entry to a hospital center
func (a *AuditLog) WithCenter(centerID uuid.UUID) *AuditLog {
	a.CenterID = &centerID
	return a
}

// WithDetail attaches free-form context, typically serialized JSON
func (a *AuditLog) WithDetail(detail string) *AuditLog {
	a.Detail = detail
	return a
}
