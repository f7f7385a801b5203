package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/sales"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSaleRepository is a mock implementation of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByNumber(ctx context.Context, saleNumber string) (*sales.Sale, error) {
	args := m.Called(ctx, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, centerID, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, patientID, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByDateRange(ctx context.Context, centerID uuid.UUID, from, to time.Time, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, centerID, from, to, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountByDay(ctx context.Context, day time.Time) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockItemRepository is a mock implementation of inventory.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProductAndCenter(ctx context.Context, productID, centerID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, productID, centerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	args := m.Called(ctx, centerID, filter)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindBelowMin(ctx context.Context, centerID uuid.UUID) ([]inventory.StockItem, error) {
	args := m.Called(ctx, centerID)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
	saved []*inventory.StockMovement
}

func (m *MockStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, stockItemID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByReference(ctx context.Context, refType inventory.MovementReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, refType, refID)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, centerID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	m.saved = append(m.saved, movement)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
	saved []*billing.Payment
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, refType billing.ReferenceType, refID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, refType, refID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, patientID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, centerID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	m.saved = append(m.saved, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumActiveAmountByReference(ctx context.Context, refType billing.ReferenceType, refID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, refType, refID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogRepository is a mock implementation of audit.AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
	saved []*audit.AuditLog
}

func (m *MockAuditLogRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]audit.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	return args.Get(0).([]audit.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]audit.AuditLog, error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).([]audit.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) Save(ctx context.Context, entry *audit.AuditLog) error {
	args := m.Called(ctx, entry)
	m.saved = append(m.saved, entry)
	return args.Error(0)
}

// MockPatientRepository is a mock implementation of patient.PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindByRecordNumber(ctx context.Context, recordNumber string) (*patient.Patient, error) {
	args := m.Called(ctx, recordNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]patient.Patient, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]patient.Patient), args.Error(1)
}

func (m *MockPatientRepository) ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, phone, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPatientRepository) Save(ctx context.Context, p *patient.Patient) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPatientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// fixedSaleNumbers returns a canned sale number
type fixedSaleNumbers struct {
	number string
}

func (g fixedSaleNumbers) NextSaleNumber(_ context.Context, _ time.Time) (string, error) {
	return g.number, nil
}

type saleFixture struct {
	service      *SaleService
	saleRepo     *MockSaleRepository
	productRepo  *MockProductRepository
	stockRepo    *MockStockItemRepository
	movementRepo *MockStockMovementRepository
	paymentRepo  *MockPaymentRepository
	auditRepo    *MockAuditLogRepository
	patientRepo  *MockPatientRepository
	now          time.Time
}

func newSaleFixture() *saleFixture {
	saleRepo := new(MockSaleRepository)
	productRepo := new(MockProductRepository)
	stockRepo := new(MockStockItemRepository)
	movementRepo := new(MockStockMovementRepository)
	paymentRepo := new(MockPaymentRepository)
	auditRepo := new(MockAuditLogRepository)
	patientRepo := new(MockPatientRepository)
	now := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	scope := NewNoOpTransactionScope(saleRepo, productRepo, stockRepo, movementRepo, paymentRepo, auditRepo)
	service := NewSaleService(scope, saleRepo, patientRepo, fixedSaleNumbers{number: "SALE-20250115-00001"}, shared.FixedClock{Instant: now}, zap.NewNop())

	return &saleFixture{
		service:      service,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		paymentRepo:  paymentRepo,
		auditRepo:    auditRepo,
		patientRepo:  patientRepo,
		now:          now,
	}
}

func activeProduct(t *testing.T, name string, price int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("P-"+uuid.NewString()[:8], name, "box", decimal.NewFromInt(price))
	require.NoError(t, err)
	return product
}

func stockWithQuantity(t *testing.T, productID, centerID uuid.UUID, quantity int) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(productID, centerID, 0, 0)
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, item.Increase(quantity))
	}
	return item
}

func TestSaleService_CreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock and snapshots prices", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		product := activeProduct(t, "Paracetamol 500mg", 500)
		item := stockWithQuantity(t, product.ID, centerID, 20)

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, centerID).Return(item, nil)
		f.stockRepo.On("SaveWithLock", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.saleRepo.On("Save", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		seller := uuid.New()
		result, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID: centerID,
			SoldBy:   seller,
			Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 3}},
		})

		require.NoError(t, err)
		assert.Equal(t, "SALE-20250115-00001", result.Sale.SaleNumber)
		assert.True(t, result.Sale.FinalAmount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, sales.SalePaymentPending, result.Sale.PaymentStatus)
		assert.Equal(t, 17, item.QuantityOnHand)

		require.Len(t, f.movementRepo.saved, 1)
		assert.Equal(t, inventory.MovementTypeSale, f.movementRepo.saved[0].Type)
		assert.Equal(t, 20, f.movementRepo.saved[0].BalanceBefore)
		assert.Equal(t, 17, f.movementRepo.saved[0].BalanceAfter)

		require.Len(t, f.auditRepo.saved, 1)
		assert.Equal(t, "sale.created", f.auditRepo.saved[0].Action)
		assert.Equal(t, seller, f.auditRepo.saved[0].ActorID)
	})

	t.Run("mark paid settles in a follow-up transaction", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		product := activeProduct(t, "Ibuprofen 400mg", 800)
		item := stockWithQuantity(t, product.ID, centerID, 10)

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, centerID).Return(item, nil)
		f.stockRepo.On("SaveWithLock", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.saleRepo.On("Save", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)
		f.saleRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)
		f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		seller := uuid.New()
		result, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID:      centerID,
			SoldBy:        seller,
			Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 2}},
			MarkPaid:      true,
			PaymentMethod: billing.MethodMobileMoney,
		})

		require.NoError(t, err)
		assert.True(t, result.Settled)
		assert.Equal(t, sales.SalePaymentPaid, result.Sale.PaymentStatus)

		require.Len(t, f.paymentRepo.saved, 1)
		payment := f.paymentRepo.saved[0]
		assert.Equal(t, billing.ReferenceTypeSale, payment.ReferenceType)
		assert.Equal(t, result.Sale.ID, payment.ReferenceID)
		assert.Equal(t, billing.MethodMobileMoney, payment.Method)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(1600)))
		assert.Equal(t, seller, payment.ReceivedBy)
		require.NotNil(t, result.PaymentID)
		assert.Equal(t, payment.ID, *result.PaymentID)
	})

	t.Run("settlement failure keeps the sale", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		product := activeProduct(t, "Amoxicillin", 1200)
		item := stockWithQuantity(t, product.ID, centerID, 10)

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, centerID).Return(item, nil)
		f.stockRepo.On("SaveWithLock", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.saleRepo.On("Save", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)
		f.saleRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*sales.Sale")).
			Return(shared.ErrConcurrencyConflict)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		result, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID: centerID,
			SoldBy:   uuid.New(),
			Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
			MarkPaid: true,
		})

		require.NoError(t, err, "a settlement failure must not fail the sale")
		assert.False(t, result.Settled)
		assert.NotEmpty(t, result.SettleError)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock rejects the whole sale", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		product := activeProduct(t, "Gauze", 100)
		item := stockWithQuantity(t, product.ID, centerID, 1)

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, centerID).Return(item, nil)

		_, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID: centerID,
			SoldBy:   uuid.New(),
			Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 5}},
		})

		assert.Error(t, err)
		f.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("inactive product rejects the sale", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		product := activeProduct(t, "Old stock", 100)
		product.Deactivate()

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)

		_, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID: centerID,
			SoldBy:   uuid.New(),
			Items:    []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("unknown product rejects the sale", func(t *testing.T) {
		f := newSaleFixture()

		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{}, nil)

		_, err := f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID: uuid.New(),
			SoldBy:   uuid.New(),
			Items:    []SaleItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("deactivated patient rejects the sale", func(t *testing.T) {
		f := newSaleFixture()
		p, err := patient.NewPatient("HMS-00042", "Awa", "Ndiaye", patient.GenderFemale, uuid.New())
		require.NoError(t, err)
		p.Deactivate()
		patientID := p.ID

		f.patientRepo.On("FindByID", ctx, patientID).Return(p, nil)

		_, err = f.service.CreateSale(ctx, CreateSaleRequest{
			CenterID:  uuid.New(),
			PatientID: &patientID,
			SoldBy:    uuid.New(),
			Items:     []SaleItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		})
		assert.Error(t, err)
		f.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestSaleService_SettleSale(t *testing.T) {
	ctx := context.Background()

	t.Run("records a payment against the sale", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()

		sale, err := sales.NewSale("SALE-20250115-00005", centerID, uuid.New(), f.now)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(uuid.New(), "Paracetamol", decimal.NewFromInt(500), 2))

		f.saleRepo.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.saleRepo.On("SaveWithLock", ctx, sale).Return(nil)
		f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		cashier := uuid.New()
		resp, err := f.service.SettleSale(ctx, SettleSaleRequest{
			SaleID:    sale.ID,
			SettledBy: cashier,
		})

		require.NoError(t, err)
		assert.Equal(t, sales.SalePaymentPaid, resp.PaymentStatus)

		require.Len(t, f.paymentRepo.saved, 1)
		payment := f.paymentRepo.saved[0]
		assert.Equal(t, billing.ReferenceTypeSale, payment.ReferenceType)
		assert.Equal(t, sale.ID, payment.ReferenceID)
		assert.Equal(t, billing.MethodCash, payment.Method, "method defaults to cash")
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, cashier, payment.ReceivedBy)
	})

	t.Run("already paid sale fails", func(t *testing.T) {
		f := newSaleFixture()
		sale, err := sales.NewSale("SALE-20250115-00006", uuid.New(), uuid.New(), f.now)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(uuid.New(), "Gauze", decimal.NewFromInt(100), 1))
		require.NoError(t, sale.MarkPaid(f.now))

		f.saleRepo.On("FindByID", ctx, sale.ID).Return(sale, nil)

		_, err = f.service.SettleSale(ctx, SettleSaleRequest{
			SaleID:    sale.ID,
			SettledBy: uuid.New(),
		})
		assert.Error(t, err)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestSaleService_CancelSale(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock through positive adjustment entries", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		productID := uuid.New()

		sale, err := sales.NewSale("SALE-20250115-00002", centerID, uuid.New(), f.now)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(productID, "Paracetamol", decimal.NewFromInt(500), 3))

		item := stockWithQuantity(t, productID, centerID, 17)

		f.saleRepo.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, centerID).Return(item, nil)
		f.stockRepo.On("SaveWithLock", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.saleRepo.On("SaveWithLock", ctx, sale).Return(nil)
		f.paymentRepo.On("FindByReference", ctx, billing.ReferenceTypeSale, sale.ID).Return([]billing.Payment{}, nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.CancelSale(ctx, CancelSaleRequest{
			SaleID:      sale.ID,
			Reason:      "wrong patient",
			CancelledBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, sales.SalePaymentCancelled, resp.PaymentStatus)
		assert.Equal(t, 20, item.QuantityOnHand)
		require.Len(t, f.movementRepo.saved, 1)
		assert.Equal(t, inventory.MovementTypeAdjustIn, f.movementRepo.saved[0].Type)
		assert.Equal(t, inventory.MovementRefAdjustment, f.movementRepo.saved[0].ReferenceType)
		assert.Equal(t, 3, f.movementRepo.saved[0].SignedQuantity())
		f.auditRepo.AssertExpectations(t)
	})

	t.Run("cancelling a paid sale voids its payment", func(t *testing.T) {
		f := newSaleFixture()
		centerID := uuid.New()
		productID := uuid.New()
		seller := uuid.New()

		sale, err := sales.NewSale("SALE-20250115-00004", centerID, seller, f.now)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(productID, "Ibuprofen", decimal.NewFromInt(800), 2))
		require.NoError(t, sale.MarkPaid(f.now))

		payment, err := billing.NewPayment(billing.ReferenceTypeSale, sale.ID, centerID,
			billing.MethodCash, decimal.NewFromInt(1600), seller, f.now)
		require.NoError(t, err)

		item := stockWithQuantity(t, productID, centerID, 8)

		f.saleRepo.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, centerID).Return(item, nil)
		f.stockRepo.On("SaveWithLock", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.saleRepo.On("SaveWithLock", ctx, sale).Return(nil)
		f.paymentRepo.On("FindByReference", ctx, billing.ReferenceTypeSale, sale.ID).
			Return([]billing.Payment{*payment}, nil)
		f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		actor := uuid.New()
		resp, err := f.service.CancelSale(ctx, CancelSaleRequest{
			SaleID:      sale.ID,
			Reason:      "returned goods",
			CancelledBy: actor,
		})

		require.NoError(t, err)
		assert.Equal(t, sales.SalePaymentCancelled, resp.PaymentStatus)
		require.Len(t, f.paymentRepo.saved, 1)
		assert.Equal(t, billing.PaymentStatusCancelled, f.paymentRepo.saved[0].Status)
		assert.Equal(t, "returned goods", f.paymentRepo.saved[0].CancelReason)
		assert.Equal(t, actor, *f.paymentRepo.saved[0].CancelledBy)
	})

	t.Run("double cancel fails", func(t *testing.T) {
		f := newSaleFixture()
		sale, err := sales.NewSale("SALE-20250115-00003", uuid.New(), uuid.New(), f.now)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(uuid.New(), "Syringe", decimal.NewFromInt(200), 1))
		require.NoError(t, sale.Cancel("first", uuid.New(), f.now))

		f.saleRepo.On("FindByID", ctx, sale.ID).Return(sale, nil)

		_, err = f.service.CancelSale(ctx, CancelSaleRequest{
			SaleID:      sale.ID,
			Reason:      "second",
			CancelledBy: uuid.New(),
		})
		assert.Error(t, err)
		f.stockRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
