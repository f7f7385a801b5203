package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentRepository provides access to payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]Payment, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]Payment, error)
	FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	// SumActiveAmountByReference sums non-cancelled payment amounts for
	// a reference, for reconciliation against the stored balance.
	SumActiveAmountByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) (decimal.Decimal, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
