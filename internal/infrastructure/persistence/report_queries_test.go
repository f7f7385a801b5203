package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockedGorm wraps a sqlmock connection in a GORM handle so the
// report SQL can be asserted without a real Postgres instance.
func newMockedGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormReportQueries_PaymentSummary(t *testing.T) {
	db, mock := newMockedGorm(t)
	queries := NewGormReportQueries(db)

	centerID := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT method, reference_type, COUNT\(\*\) as count, COALESCE\(SUM\(amount\), 0\) as total_amount FROM "payments"`).
		WithArgs(centerID, "ACTIVE", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"method", "reference_type", "count", "total_amount"}).
			AddRow("CASH", "CARE_EPISODE", 3, "15000").
			AddRow("MOBILE_MONEY", "EXAMINATION", 1, "4500"))

	rows, err := queries.PaymentSummary(context.Background(), centerID, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].Count)
	assert.Equal(t, "15000", rows[0].TotalAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportQueries_StockLevels(t *testing.T) {
	db, mock := newMockedGorm(t)
	queries := NewGormReportQueries(db)

	centerID := uuid.New()

	t.Run("lists every stock record", func(t *testing.T) {
		mock.ExpectQuery(`FROM "stock_items" JOIN products ON products\.id = stock_items\.product_id`).
			WithArgs(centerID).
			WillReturnRows(sqlmock.NewRows([]string{"product_code", "product_name", "quantity_on_hand", "min_quantity", "below_min"}).
				AddRow("PARA500", "Paracetamol 500mg", 40, 10, false).
				AddRow("AMOX250", "Amoxicilline 250mg", 2, 5, true))

		rows, err := queries.StockLevels(context.Background(), centerID, false)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.True(t, rows[1].BelowMin)
	})

	t.Run("below-min filter adds the threshold predicate", func(t *testing.T) {
		mock.ExpectQuery(`stock_items\.min_quantity > 0 AND stock_items\.quantity_on_hand < stock_items\.min_quantity ORDER BY`).
			WithArgs(centerID).
			WillReturnRows(sqlmock.NewRows([]string{"product_code", "product_name", "quantity_on_hand", "min_quantity", "below_min"}).
				AddRow("AMOX250", "Amoxicilline 250mg", 2, 5, true))

		rows, err := queries.StockLevels(context.Background(), centerID, true)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "AMOX250", rows[0].ProductCode)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
