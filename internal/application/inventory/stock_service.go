package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService handles stock queries and manual adjustments. Every
// adjustment writes a ledger entry and an audit record alongside the
// quantity change.
type StockService struct {
	scope         TransactionScope
	stockItemRepo inventory.StockItemRepository
	movementRepo  inventory.StockMovementRepository
	clock         shared.Clock
	logger        *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope TransactionScope,
	stockItemRepo inventory.StockItemRepository,
	movementRepo inventory.StockMovementRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		scope:         scope,
		stockItemRepo: stockItemRepo,
		movementRepo:  movementRepo,
		clock:         clock,
		logger:        logger.Named("stock_service"),
	}
}

// AdjustStock corrects a stock count by a signed delta, for counts,
// breakage or expiry. The direction picks the movement type.
func (s *StockService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockItemResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	now := s.clock.Now()
	var response StockItemResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItemRepo().FindByProductAndCenter(ctx, req.ProductID, req.CenterID)
		if err != nil {
			return fmt.Errorf("failed to load stock: %w", err)
		}
		if item == nil {
			if req.Delta < 0 {
				return shared.NewDomainError("STOCK_NOT_FOUND", "Stock record not found")
			}
			item, err = inventory.NewStockItem(req.ProductID, req.CenterID, 0, 0)
			if err != nil {
				return err
			}
		}

		movementType := inventory.MovementTypeAdjustIn
		quantity := req.Delta
		if req.Delta < 0 {
			movementType = inventory.MovementTypeAdjustOut
			quantity = -req.Delta
		}

		movement, err := inventory.NewStockMovement(item, movementType, quantity,
			inventory.MovementRefAdjustment, nil, req.PerformedBy, now)
		if err != nil {
			return err
		}
		movement.WithReason(req.Reason)

		if req.Delta > 0 {
			err = item.Increase(quantity)
		} else {
			err = item.Decrease(quantity)
		}
		if err != nil {
			return err
		}

		if err := repos.StockItemRepo().Save(ctx, item); err != nil {
			return fmt.Errorf("failed to save stock: %w", err)
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		entry, err := audit.NewAuditLog("stock.adjusted", "StockItem", item.ID, req.PerformedBy, now)
		if err != nil {
			return err
		}
		entry.WithCenter(req.CenterID).
			WithDetail(fmt.Sprintf(`{"delta":%d,"reason":%q}`, req.Delta, req.Reason))
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToStockItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", req.ProductID.String()),
		zap.String("center_id", req.CenterID.String()),
		zap.Int("delta", req.Delta))

	return &response, nil
}

// GetStock returns the stock record for a product at a center
func (s *StockService) GetStock(ctx context.Context, productID, centerID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.stockItemRepo.FindByProductAndCenter(ctx, productID, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if item == nil {
		return nil, shared.NewDomainError("STOCK_NOT_FOUND", "Stock record not found")
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// ListStockByCenter returns all stock records at a center
func (s *StockService) ListStockByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]StockItemResponse, error) {
	items, err := s.stockItemRepo.FindByCenter(ctx, centerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = ToStockItemResponse(&items[i])
	}
	return out, nil
}

// ListBelowMin returns stock records under their minimum threshold
func (s *StockService) ListBelowMin(ctx context.Context, centerID uuid.UUID) ([]StockItemResponse, error) {
	items, err := s.stockItemRepo.FindBelowMin(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = ToStockItemResponse(&items[i])
	}
	return out, nil
}

// ListMovements returns the ledger history for a stock item
func (s *StockService) ListMovements(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByStockItem(ctx, stockItemID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, nil
}
