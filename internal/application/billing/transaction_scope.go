package billing

import (
	"context"

	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/care"
)

// TransactionScope provides transactional access to the repositories a
// payment workflow touches. Everything executed inside Execute commits
// or rolls back as one database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing-side
// repositories within one transaction. A payment and its effect on the
// referenced balance must never be persisted separately.
type TransactionalRepositories interface {
	PaymentRepo() billing.PaymentRepository
	EpisodeRepo() care.CareEpisodeRepository
	ExaminationRepo() care.ExaminationRepository
	AuditRepo() audit.AuditLogRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	paymentRepo     billing.PaymentRepository
	episodeRepo     care.CareEpisodeRepository
	examinationRepo care.ExaminationRepository
	auditRepo       audit.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	paymentRepo billing.PaymentRepository,
	episodeRepo care.CareEpisodeRepository,
	examinationRepo care.ExaminationRepository,
	auditRepo audit.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		paymentRepo:     paymentRepo,
		episodeRepo:     episodeRepo,
		examinationRepo: examinationRepo,
		auditRepo:       auditRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// EpisodeRepo returns the care episode repository
func (s *NoOpTransactionScope) EpisodeRepo() care.CareEpisodeRepository {
	return s.episodeRepo
}

// ExaminationRepo returns the examination repository
func (s *NoOpTransactionScope) ExaminationRepo() care.ExaminationRepository {
	return s.examinationRepo
}

// AuditRepo returns the audit log repository
func (s *NoOpTransactionScope) AuditRepo() audit.AuditLogRepository {
	return s.auditRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
