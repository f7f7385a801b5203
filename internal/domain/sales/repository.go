package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// SaleRepository provides access to pharmacy sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, saleNumber string) (*Sale, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]Sale, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]Sale, error)
	FindByDateRange(ctx context.Context, centerID uuid.UUID, from, to time.Time, filter shared.Filter) ([]Sale, error)
	// CountByDay counts sales whose number was issued on the given day,
	// used as a fallback when the sequence counter is unavailable.
	CountByDay(ctx context.Context, day time.Time) (int64, error)
	Save(ctx context.Context, sale *Sale) error
	SaveWithLock(ctx context.Context, sale *Sale) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
