package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// AuditLogRepository provides access to the audit trail
type AuditLogRepository interface {
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditLog, error)
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]AuditLog, error)
	Save(ctx context.Context, entry *AuditLog) error
}
