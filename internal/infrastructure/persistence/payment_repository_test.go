package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(t *testing.T, refID uuid.UUID, amount int64) *billing.Payment {
	t.Helper()
	payment, err := billing.NewPayment(
		billing.ReferenceTypeCareEpisode,
		refID,
		uuid.New(),
		billing.MethodCash,
		decimal.NewFromInt(amount),
		uuid.New(),
		time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return payment
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPaymentRepository(db)

	refID := uuid.New()
	payment := newPayment(t, refID, 5000)
	require.NoError(t, repo.Save(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, payment.ID, found.ID)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, billing.PaymentStatusActive, found.Status)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	byRef, err := repo.FindByReference(ctx, billing.ReferenceTypeCareEpisode, refID)
	require.NoError(t, err)
	require.Len(t, byRef, 1)
}

func TestGormPaymentRepository_SumActiveAmountByReference(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPaymentRepository(db)

	refID := uuid.New()

	first := newPayment(t, refID, 3000)
	require.NoError(t, repo.Save(ctx, first))

	second := newPayment(t, refID, 2000)
	require.NoError(t, repo.Save(ctx, second))

	cancelled := newPayment(t, refID, 9000)
	require.NoError(t, cancelled.Cancel("duplicate entry", uuid.New(), time.Now()))
	require.NoError(t, repo.Save(ctx, cancelled))

	// payment against another episode must not leak in
	other := newPayment(t, uuid.New(), 700)
	require.NoError(t, repo.Save(ctx, other))

	total, err := repo.SumActiveAmountByReference(ctx, billing.ReferenceTypeCareEpisode, refID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)), "got %s", total)
}
