package persistence

import (
	"testing"

	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/care"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/sales"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema,
// isolated per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&catalog.Product{},
		&center.HospitalCenter{},
		&center.StaffAssignment{},
		&patient.Patient{},
		&care.CareEpisode{},
		&care.Examination{},
		&billing.Payment{},
		&inventory.StockItem{},
		&inventory.StockMovement{},
		&inventory.StockTransfer{},
		&inventory.TransferItem{},
		&sales.Sale{},
		&sales.SaleItem{},
		&audit.AuditLog{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}
