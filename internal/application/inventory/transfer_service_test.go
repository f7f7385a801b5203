package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

// MockStockTransferRepository is a mock implementation of inventory.StockTransferRepository
type MockStockTransferRepository struct {
	mock.Mock
}

func (m *MockStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockTransfer), args.Error(1)
}

func (m *MockStockTransferRepository) FindByNumber(ctx context.Context, transferNumber string) (*inventory.StockTransfer, error) {
	args := m.Called(ctx, transferNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockTransfer), args.Error(1)
}

func (m *MockStockTransferRepository) FindByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]inventory.StockTransfer, error) {
	args := m.Called(ctx, centerID, filter)
	return args.Get(0).([]inventory.StockTransfer), args.Error(1)
}

func (m *MockStockTransferRepository) FindByStatus(ctx context.Context, status inventory.TransferStatus, filter shared.Filter) ([]inventory.StockTransfer, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]inventory.StockTransfer), args.Error(1)
}

func (m *MockStockTransferRepository) Save(ctx context.Context, transfer *inventory.StockTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockStockTransferRepository) SaveWithLock(ctx context.Context, transfer *inventory.StockTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockStockTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
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

// MockHospitalCenterRepository is a mock implementation of center.HospitalCenterRepository
type MockHospitalCenterRepository struct {
	mock.Mock
}

func (m *MockHospitalCenterRepository) FindByID(ctx context.Context, id uuid.UUID) (*center.HospitalCenter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*center.HospitalCenter), args.Error(1)
}

func (m *MockHospitalCenterRepository) FindByCode(ctx context.Context, code string) (*center.HospitalCenter, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*center.HospitalCenter), args.Error(1)
}

func (m *MockHospitalCenterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]center.HospitalCenter, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]center.HospitalCenter), args.Error(1)
}

func (m *MockHospitalCenterRepository) Save(ctx context.Context, c *center.HospitalCenter) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockStaffAssignmentRepository is a mock implementation of center.StaffAssignmentRepository
type MockStaffAssignmentRepository struct {
	mock.Mock
}

func (m *MockStaffAssignmentRepository) FindByUserAndCenter(ctx context.Context, userID, centerID uuid.UUID) (*center.StaffAssignment, error) {
	args := m.Called(ctx, userID, centerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*center.StaffAssignment), args.Error(1)
}

func (m *MockStaffAssignmentRepository) FindByCenter(ctx context.Context, centerID uuid.UUID) ([]center.StaffAssignment, error) {
	args := m.Called(ctx, centerID)
	return args.Get(0).([]center.StaffAssignment), args.Error(1)
}

func (m *MockStaffAssignmentRepository) Save(ctx context.Context, assignment *center.StaffAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockStaffAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

// fixedNumberGenerator returns a canned transfer number
type fixedNumberGenerator struct {
	number string
}

func (g fixedNumberGenerator) NextTransferNumber(_ context.Context, _ time.Time) (string, error) {
	return g.number, nil
}

type transferFixture struct {
	service      *TransferService
	stockRepo    *MockStockItemRepository
	movementRepo *MockStockMovementRepository
	transferRepo *MockStockTransferRepository
	productRepo  *MockProductRepository
	centerRepo   *MockHospitalCenterRepository
	staffRepo    *MockStaffAssignmentRepository
	auditRepo    *MockAuditLogRepository
	now          time.Time
}

func newTransferFixture() *transferFixture {
	stockRepo := new(MockStockItemRepository)
	movementRepo := new(MockStockMovementRepository)
	transferRepo := new(MockStockTransferRepository)
	productRepo := new(MockProductRepository)
	centerRepo := new(MockHospitalCenterRepository)
	staffRepo := new(MockStaffAssignmentRepository)
	auditRepo := new(MockAuditLogRepository)
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	scope := NewNoOpTransactionScope(stockRepo, movementRepo, transferRepo, auditRepo)
	service := NewTransferService(scope, transferRepo, stockRepo, productRepo, centerRepo, staffRepo,
		fixedNumberGenerator{number: "TRF-20250115-00001"}, shared.FixedClock{Instant: now}, zap.NewNop())

	return &transferFixture{
		service:      service,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		transferRepo: transferRepo,
		productRepo:  productRepo,
		centerRepo:   centerRepo,
		staffRepo:    staffRepo,
		auditRepo:    auditRepo,
		now:          now,
	}
}

func activeCenter(t *testing.T, code string) *center.HospitalCenter {
	t.Helper()
	c, err := center.NewHospitalCenter(code, "Centre "+code, "Douala")
	require.NoError(t, err)
	return c
}

func activeProduct(t *testing.T, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("P-"+uuid.NewString()[:8], name, "box", decimal.NewFromInt(500))
	require.NoError(t, err)
	return p
}

func stockItemWithQuantity(t *testing.T, productID, centerID uuid.UUID, quantity int) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(productID, centerID, 0, 0)
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, item.Increase(quantity))
	}
	return item
}

func managerAssignment(t *testing.T, userID, centerID uuid.UUID) *center.StaffAssignment {
	t.Helper()
	assignment, err := center.NewStaffAssignment(userID, centerID, center.RolePharmacyManager)
	require.NoError(t, err)
	return assignment
}

func TestTransferService_RequestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("creates requested transfer when source has stock", func(t *testing.T) {
		f := newTransferFixture()
		product := activeProduct(t, "Paracetamol 500mg")
		source := activeCenter(t, "DLA")
		dest := activeCenter(t, "YDE")

		f.centerRepo.On("FindByID", ctx, source.ID).Return(source, nil)
		f.centerRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, source.ID).
			Return(stockItemWithQuantity(t, product.ID, source.ID, 50), nil)
		f.transferRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockTransfer")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		requester := uuid.New()
		resp, err := f.service.RequestTransfer(ctx, RequestTransferRequest{
			SourceCenterID: source.ID,
			DestCenterID:   dest.ID,
			RequestedBy:    requester,
			Items:          []TransferItemRequest{{ProductID: product.ID, Quantity: 20}},
		})

		require.NoError(t, err)
		assert.Equal(t, "TRF-20250115-00001", resp.TransferNumber)
		assert.Equal(t, inventory.TransferStatusRequested, resp.Status)

		require.Len(t, f.auditRepo.saved, 1)
		assert.Equal(t, "transfer.requested", f.auditRepo.saved[0].Action)
		assert.Equal(t, requester, f.auditRepo.saved[0].ActorID)
	})

	t.Run("rejects request exceeding source stock", func(t *testing.T) {
		f := newTransferFixture()
		product := activeProduct(t, "Amoxicillin")
		source := activeCenter(t, "DLA")
		dest := activeCenter(t, "YDE")

		f.centerRepo.On("FindByID", ctx, source.ID).Return(source, nil)
		f.centerRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, product.ID, source.ID).
			Return(stockItemWithQuantity(t, product.ID, source.ID, 5), nil)

		_, err := f.service.RequestTransfer(ctx, RequestTransferRequest{
			SourceCenterID: source.ID,
			DestCenterID:   dest.ID,
			RequestedBy:    uuid.New(),
			Items:          []TransferItemRequest{{ProductID: product.ID, Quantity: 20}},
		})

		assert.Error(t, err)
		f.transferRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		f := newTransferFixture()
		product := activeProduct(t, "Old stock")
		product.Deactivate()
		source := activeCenter(t, "DLA")
		dest := activeCenter(t, "YDE")

		f.centerRepo.On("FindByID", ctx, source.ID).Return(source, nil)
		f.centerRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
		f.productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)

		_, err := f.service.RequestTransfer(ctx, RequestTransferRequest{
			SourceCenterID: source.ID,
			DestCenterID:   dest.ID,
			RequestedBy:    uuid.New(),
			Items:          []TransferItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown center", func(t *testing.T) {
		f := newTransferFixture()
		missing := uuid.New()

		f.centerRepo.On("FindByID", ctx, missing).Return(nil, nil)

		_, err := f.service.RequestTransfer(ctx, RequestTransferRequest{
			SourceCenterID: missing,
			DestCenterID:   uuid.New(),
			RequestedBy:    uuid.New(),
			Items:          []TransferItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		f := newTransferFixture()
		_, err := f.service.RequestTransfer(ctx, RequestTransferRequest{
			SourceCenterID: uuid.New(),
			DestCenterID:   uuid.New(),
			RequestedBy:    uuid.New(),
		})
		assert.Error(t, err)
	})
}

func TestTransferService_ApproveTransfer(t *testing.T) {
	ctx := context.Background()

	newRequestedTransfer := func(t *testing.T, productID, sourceID uuid.UUID) *inventory.StockTransfer {
		t.Helper()
		transfer, err := inventory.NewStockTransfer("TRF-20250115-00001", sourceID, uuid.New(), uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(productID, 10))
		return transfer
	}

	t.Run("pharmacy manager at source center approves", func(t *testing.T) {
		f := newTransferFixture()
		productID, sourceID := uuid.New(), uuid.New()
		approver := uuid.New()
		transfer := newRequestedTransfer(t, productID, sourceID)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, approver, sourceID).
			Return(managerAssignment(t, approver, sourceID), nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, sourceID).
			Return(stockItemWithQuantity(t, productID, sourceID, 50), nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.ApproveTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    approver,
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransferStatusApproved, resp.Status)
		f.auditRepo.AssertExpectations(t)
	})

	t.Run("cashier cannot approve", func(t *testing.T) {
		f := newTransferFixture()
		productID, sourceID := uuid.New(), uuid.New()
		actor := uuid.New()
		transfer := newRequestedTransfer(t, productID, sourceID)

		assignment, err := center.NewStaffAssignment(actor, sourceID, center.RoleCashier)
		require.NoError(t, err)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, actor, sourceID).Return(assignment, nil)

		_, err = f.service.ApproveTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    actor,
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, inventory.TransferStatusRequested, transfer.Status)
	})

	t.Run("approval re-validates source stock", func(t *testing.T) {
		f := newTransferFixture()
		productID, sourceID := uuid.New(), uuid.New()
		approver := uuid.New()
		transfer := newRequestedTransfer(t, productID, sourceID)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, approver, sourceID).
			Return(managerAssignment(t, approver, sourceID), nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, sourceID).
			Return(stockItemWithQuantity(t, productID, sourceID, 3), nil)

		_, err := f.service.ApproveTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    approver,
		})

		assert.Error(t, err)
		f.transferRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestTransferService_RejectTransfer(t *testing.T) {
	ctx := context.Background()

	newRequestedTransfer := func(t *testing.T, productID, sourceID uuid.UUID) *inventory.StockTransfer {
		t.Helper()
		transfer, err := inventory.NewStockTransfer("TRF-20250115-00004", sourceID, uuid.New(), uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(productID, 10))
		return transfer
	}

	t.Run("manager rejects with a reason", func(t *testing.T) {
		f := newTransferFixture()
		sourceID := uuid.New()
		actor := uuid.New()
		transfer := newRequestedTransfer(t, uuid.New(), sourceID)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, actor, sourceID).
			Return(managerAssignment(t, actor, sourceID), nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.RejectTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    actor,
			Reason:     "source stock reserved",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransferStatusRejected, resp.Status)
		assert.Equal(t, "source stock reserved", transfer.StatusReason)

		require.Len(t, f.auditRepo.saved, 1)
		assert.Equal(t, "transfer.rejected", f.auditRepo.saved[0].Action)
	})

	t.Run("approved transfer can still be rejected", func(t *testing.T) {
		f := newTransferFixture()
		sourceID := uuid.New()
		actor := uuid.New()
		transfer := newRequestedTransfer(t, uuid.New(), sourceID)
		require.NoError(t, transfer.Approve(uuid.New(), time.Now()))

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, actor, sourceID).
			Return(managerAssignment(t, actor, sourceID), nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.RejectTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    actor,
			Reason:     "destination closed",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransferStatusRejected, resp.Status)
		assert.Equal(t, actor, *transfer.RejectedBy)
	})

	t.Run("cashier cannot reject", func(t *testing.T) {
		f := newTransferFixture()
		sourceID := uuid.New()
		actor := uuid.New()
		transfer := newRequestedTransfer(t, uuid.New(), sourceID)

		assignment, err := center.NewStaffAssignment(actor, sourceID, center.RoleCashier)
		require.NoError(t, err)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, actor, sourceID).Return(assignment, nil)

		_, err = f.service.RejectTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    actor,
			Reason:     "not my call",
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.transferRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("completed transfer cannot be rejected", func(t *testing.T) {
		f := newTransferFixture()
		sourceID := uuid.New()
		actor := uuid.New()
		transfer := newRequestedTransfer(t, uuid.New(), sourceID)
		require.NoError(t, transfer.Approve(uuid.New(), time.Now()))
		require.NoError(t, transfer.Complete(uuid.New(), time.Now()))

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.staffRepo.On("FindByUserAndCenter", ctx, actor, sourceID).
			Return(managerAssignment(t, actor, sourceID), nil)

		_, err := f.service.RejectTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    actor,
			Reason:     "too late",
		})
		assert.Error(t, err)
	})
}

func TestTransferService_CancelTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel leaves an audit entry", func(t *testing.T) {
		f := newTransferFixture()
		transfer, err := inventory.NewStockTransfer("TRF-20250115-00005", uuid.New(), uuid.New(), uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(uuid.New(), 4))

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.CancelTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    uuid.New(),
			Reason:     "no longer needed",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransferStatusCancelled, resp.Status)
		require.Len(t, f.auditRepo.saved, 1)
		assert.Equal(t, "transfer.cancelled", f.auditRepo.saved[0].Action)
	})
}

func TestTransferService_CompleteTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves stock and writes paired ledger entries", func(t *testing.T) {
		f := newTransferFixture()
		productID, sourceID, destID := uuid.New(), uuid.New(), uuid.New()

		transfer, err := inventory.NewStockTransfer("TRF-20250115-00001", sourceID, destID, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(productID, 8))
		require.NoError(t, transfer.Approve(uuid.New(), time.Now()))

		source := stockItemWithQuantity(t, productID, sourceID, 20)
		dest := stockItemWithQuantity(t, productID, destID, 2)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, sourceID).Return(source, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, destID).Return(dest, nil)
		f.stockRepo.On("SaveWithLock", ctx, source).Return(nil)
		f.stockRepo.On("Save", ctx, dest).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := f.service.CompleteTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransferStatusCompleted, resp.Status)
		assert.Equal(t, 12, source.QuantityOnHand)
		assert.Equal(t, 10, dest.QuantityOnHand)

		require.Len(t, f.movementRepo.saved, 2)
		sum := 0
		for _, m := range f.movementRepo.saved {
			sum += m.SignedQuantity()
		}
		assert.Equal(t, 0, sum, "transfer movements must cancel out")
	})

	t.Run("creates destination stock record when missing", func(t *testing.T) {
		f := newTransferFixture()
		productID, sourceID, destID := uuid.New(), uuid.New(), uuid.New()

		transfer, err := inventory.NewStockTransfer("TRF-20250115-00002", sourceID, destID, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(productID, 5))
		require.NoError(t, transfer.Approve(uuid.New(), time.Now()))

		source := stockItemWithQuantity(t, productID, sourceID, 10)

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, sourceID).Return(source, nil)
		f.stockRepo.On("FindByProductAndCenter", ctx, productID, destID).Return(nil, nil)
		f.stockRepo.On("SaveWithLock", ctx, source).Return(nil)
		f.stockRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockItem")).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.transferRepo.On("SaveWithLock", ctx, transfer).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		_, err = f.service.CompleteTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, 5, source.QuantityOnHand)
	})

	t.Run("cannot complete an unapproved transfer", func(t *testing.T) {
		f := newTransferFixture()
		transfer, err := inventory.NewStockTransfer("TRF-20250115-00003", uuid.New(), uuid.New(), uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, transfer.AddItem(uuid.New(), 5))

		f.transferRepo.On("FindByID", ctx, transfer.ID).Return(transfer, nil)

		_, err = f.service.CompleteTransfer(ctx, TransferDecisionRequest{
			TransferID: transfer.ID,
			ActorID:    uuid.New(),
		})
		assert.Error(t, err)
	})
}

func TestStockService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	newStockFixture := func() (*StockService, *transferFixture) {
		f := newTransferFixture()
		scope := NewNoOpTransactionScope(f.stockRepo, f.movementRepo, f.transferRepo, f.auditRepo)
		return NewStockService(scope, f.stockRepo, f.movementRepo, shared.FixedClock{Instant: f.now}, zap.NewNop()), f
	}

	t.Run("negative delta writes an ADJUST_OUT entry", func(t *testing.T) {
		service, f := newStockFixture()
		productID, centerID := uuid.New(), uuid.New()
		item := stockItemWithQuantity(t, productID, centerID, 10)

		f.stockRepo.On("FindByProductAndCenter", ctx, productID, centerID).Return(item, nil)
		f.stockRepo.On("Save", ctx, item).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := service.AdjustStock(ctx, AdjustStockRequest{
			ProductID:   productID,
			CenterID:    centerID,
			Delta:       -3,
			Reason:      "expired batch discarded",
			PerformedBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, 7, resp.QuantityOnHand)
		require.Len(t, f.movementRepo.saved, 1)
		assert.Equal(t, inventory.MovementTypeAdjustOut, f.movementRepo.saved[0].Type)
		assert.Equal(t, -3, f.movementRepo.saved[0].SignedQuantity())
	})

	t.Run("positive delta on missing record creates it", func(t *testing.T) {
		service, f := newStockFixture()
		productID, centerID := uuid.New(), uuid.New()

		f.stockRepo.On("FindByProductAndCenter", ctx, productID, centerID).Return(nil, nil)
		f.stockRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockItem")).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.auditRepo.On("Save", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		resp, err := service.AdjustStock(ctx, AdjustStockRequest{
			ProductID:   productID,
			CenterID:    centerID,
			Delta:       15,
			Reason:      "initial count",
			PerformedBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, 15, resp.QuantityOnHand)
	})

	t.Run("negative delta beyond stock fails", func(t *testing.T) {
		service, f := newStockFixture()
		productID, centerID := uuid.New(), uuid.New()
		item := stockItemWithQuantity(t, productID, centerID, 2)

		f.stockRepo.On("FindByProductAndCenter", ctx, productID, centerID).Return(item, nil)

		_, err := service.AdjustStock(ctx, AdjustStockRequest{
			ProductID:   productID,
			CenterID:    centerID,
			Delta:       -5,
			Reason:      "count correction",
			PerformedBy: uuid.New(),
		})

		assert.Error(t, err)
		assert.Equal(t, 2, item.QuantityOnHand)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		service, _ := newStockFixture()
		_, err := service.AdjustStock(ctx, AdjustStockRequest{
			ProductID:   uuid.New(),
			CenterID:    uuid.New(),
			Delta:       0,
			Reason:      "noop",
			PerformedBy: uuid.New(),
		})
		assert.Error(t, err)
	})
}
