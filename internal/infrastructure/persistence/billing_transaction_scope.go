package persistence

import (
	"context"

	appbilling "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/care"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope
// using GORM transactions, so a payment and its balance effect commit
// or roll back together.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

type gormBillingRepositories struct {
	tx *gorm.DB
}

func (r *gormBillingRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormBillingRepositories) EpisodeRepo() care.CareEpisodeRepository {
	return NewGormCareEpisodeRepository(r.tx)
}

func (r *gormBillingRepositories) ExaminationRepo() care.ExaminationRepository {
	return NewGormExaminationRepository(r.tx)
}

func (r *gormBillingRepositories) AuditRepo() audit.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure interface compliance
var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
