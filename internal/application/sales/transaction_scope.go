package sales

import (
	"context"

	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a
// sale touches. The sale, its stock decrements and the ledger entries
// commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the sales-side
// repositories within one transaction.
type TransactionalRepositories interface {
	SaleRepo() sales.SaleRepository
	ProductRepo() catalog.ProductRepository
	StockItemRepo() inventory.StockItemRepository
	MovementRepo() inventory.StockMovementRepository
	PaymentRepo() billing.PaymentRepository
	AuditRepo() audit.AuditLogRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	saleRepo      sales.SaleRepository
	productRepo   catalog.ProductRepository
	stockItemRepo inventory.StockItemRepository
	movementRepo  inventory.StockMovementRepository
	paymentRepo   billing.PaymentRepository
	auditRepo     audit.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	stockItemRepo inventory.StockItemRepository,
	movementRepo inventory.StockMovementRepository,
	paymentRepo billing.PaymentRepository,
	auditRepo audit.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		stockItemRepo: stockItemRepo,
		movementRepo:  movementRepo,
		paymentRepo:   paymentRepo,
		auditRepo:     auditRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository {
	return s.saleRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// StockItemRepo returns the stock item repository
func (s *NoOpTransactionScope) StockItemRepo() inventory.StockItemRepository {
	return s.stockItemRepo
}

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// AuditRepo returns the audit log repository
func (s *NoOpTransactionScope) AuditRepo() audit.AuditLogRepository {
	return s.auditRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
