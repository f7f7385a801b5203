package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// PatientRepository provides access to the patient registry
type PatientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	FindByRecordNumber(ctx context.Context, recordNumber string) (*Patient, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Patient, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, patient *Patient) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
