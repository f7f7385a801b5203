package inventory

import (
	"context"

	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the inventory
// repositories. A stock mutation and its ledger entry must always land
// in the same database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory
// repositories within one transaction.
type TransactionalRepositories interface {
	StockItemRepo() inventory.StockItemRepository
	MovementRepo() inventory.StockMovementRepository
	TransferRepo() inventory.StockTransferRepository
	AuditRepo() audit.AuditLogRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	stockItemRepo inventory.StockItemRepository
	movementRepo  inventory.StockMovementRepository
	transferRepo  inventory.StockTransferRepository
	auditRepo     audit.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	stockItemRepo inventory.StockItemRepository,
	movementRepo inventory.StockMovementRepository,
	transferRepo inventory.StockTransferRepository,
	auditRepo audit.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockItemRepo: stockItemRepo,
		movementRepo:  movementRepo,
		transferRepo:  transferRepo,
		auditRepo:     auditRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockItemRepo returns the stock item repository
func (s *NoOpTransactionScope) StockItemRepo() inventory.StockItemRepository {
	return s.stockItemRepo
}

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// TransferRepo returns the stock transfer repository
func (s *NoOpTransactionScope) TransferRepo() inventory.StockTransferRepository {
	return s.transferRepo
}

// AuditRepo returns the audit log repository
func (s *NoOpTransactionScope) AuditRepo() audit.AuditLogRepository {
	return s.auditRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
