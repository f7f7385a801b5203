package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransferNumberGenerator issues unique transfer numbers in the
// TRF-yyyyMMdd-NNNNN format
type TransferNumberGenerator interface {
	NextTransferNumber(ctx context.Context, day time.Time) (string, error)
}

// TransferService orchestrates the inter-center transfer workflow.
// Stock only moves on completion; request and approval validate
// availability at the source without reserving it.
type TransferService struct {
	scope         TransactionScope
	transferRepo  inventory.StockTransferRepository
	stockItemRepo inventory.StockItemRepository
	productRepo   catalog.ProductRepository
	centerRepo    center.HospitalCenterRepository
	staffRepo     center.StaffAssignmentRepository
	numbers       TransferNumberGenerator
	clock         shared.Clock
	logger        *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	scope TransactionScope,
	transferRepo inventory.StockTransferRepository,
	stockItemRepo inventory.StockItemRepository,
	productRepo catalog.ProductRepository,
	centerRepo center.HospitalCenterRepository,
	staffRepo center.StaffAssignmentRepository,
	numbers TransferNumberGenerator,
	clock shared.Clock,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		scope:         scope,
		transferRepo:  transferRepo,
		stockItemRepo: stockItemRepo,
		productRepo:   productRepo,
		centerRepo:    centerRepo,
		staffRepo:     staffRepo,
		numbers:       numbers,
		clock:         clock,
		logger:        logger.Named("transfer_service"),
	}
}

// authorizeApproval checks that the actor holds an approving role at
// the source center
func (s *TransferService) authorizeApproval(ctx context.Context, actorID, sourceCenterID uuid.UUID) error {
	assignment, err := s.staffRepo.FindByUserAndCenter(ctx, actorID, sourceCenterID)
	if err != nil {
		return fmt.Errorf("failed to load staff assignment: %w", err)
	}
	if assignment == nil || !assignment.Role.CanApproveTransfers() {
		return shared.ErrForbidden
	}
	return nil
}

func (s *TransferService) validateCenter(ctx context.Context, id uuid.UUID) error {
	c, err := s.centerRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found or inactive")
	}
	return nil
}

func (s *TransferService) validateProducts(ctx context.Context, items []TransferItemRequest) error {
	ids := make([]uuid.UUID, len(items))
	for i, line := range items {
		ids[i] = line.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, line := range items {
		product, ok := byID[line.ProductID]
		if !ok {
			return shared.NewDomainError("PRODUCT_NOT_FOUND",
				fmt.Sprintf("Product %s not found", line.ProductID))
		}
		if !product.Active {
			return shared.NewDomainError("PRODUCT_INACTIVE",
				fmt.Sprintf("Product %s is inactive", product.Code))
		}
	}
	return nil
}

// validateSourceStock checks every requested line against the source
// center's current stock
func validateSourceStock(ctx context.Context, repo inventory.StockItemRepository, transfer *inventory.StockTransfer) error {
	for i := range transfer.Items {
		line := &transfer.Items[i]
		item, err := repo.FindByProductAndCenter(ctx, line.ProductID, transfer.SourceCenterID)
		if err != nil {
			return fmt.Errorf("failed to load source stock: %w", err)
		}
		if item == nil || !item.HasSufficientStock(line.Quantity) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Source center lacks stock for product %s", line.ProductID))
		}
	}
	return nil
}

// RequestTransfer opens a transfer in REQUESTED state after validating
// centers, products and source availability. The transfer and its
// audit entry are written in one transaction.
func (s *TransferService) RequestTransfer(ctx context.Context, req RequestTransferRequest) (*TransferResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRANSFER", "A transfer needs at least one item")
	}
	if err := s.validateCenter(ctx, req.SourceCenterID); err != nil {
		return nil, err
	}
	if err := s.validateCenter(ctx, req.DestCenterID); err != nil {
		return nil, err
	}
	if err := s.validateProducts(ctx, req.Items); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	number, err := s.numbers.NextTransferNumber(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transfer number: %w", err)
	}

	transfer, err := inventory.NewStockTransfer(number, req.SourceCenterID, req.DestCenterID, req.RequestedBy, now)
	if err != nil {
		return nil, err
	}
	transfer.Notes = req.Notes
	for _, line := range req.Items {
		if err := transfer.AddItem(line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := validateSourceStock(ctx, repos.StockItemRepo(), transfer); err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, transfer); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}

		entry, err := transferAudit("transfer.requested", transfer, req.RequestedBy, now,
			fmt.Sprintf(`{"transfer_number":%q,"items":%d}`, transfer.TransferNumber, len(transfer.Items)))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer requested",
		zap.String("transfer_number", transfer.TransferNumber),
		zap.String("source_center", transfer.SourceCenterID.String()),
		zap.String("dest_center", transfer.DestCenterID.String()),
		zap.Int("items", len(transfer.Items)))

	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// ApproveTransfer moves a requested transfer to APPROVED. Only staff
// holding an approving role at the source center may approve, and the
// source stock is re-validated at approval time.
func (s *TransferService) ApproveTransfer(ctx context.Context, req TransferDecisionRequest) (*TransferResponse, error) {
	now := s.clock.Now()
	var response TransferResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.TransferRepo().FindByID(ctx, req.TransferID)
		if err != nil {
			return fmt.Errorf("failed to load transfer: %w", err)
		}
		if transfer == nil {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
		}

		if err := s.authorizeApproval(ctx, req.ActorID, transfer.SourceCenterID); err != nil {
			return err
		}
		if err := validateSourceStock(ctx, repos.StockItemRepo(), transfer); err != nil {
			return err
		}
		if err := transfer.Approve(req.ActorID, now); err != nil {
			return err
		}
		if err := repos.TransferRepo().SaveWithLock(ctx, transfer); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}

		entry, err := transferAudit("transfer.approved", transfer, req.ActorID, now, "")
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToTransferResponse(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer approved",
		zap.String("transfer_number", response.TransferNumber),
		zap.String("approved_by", req.ActorID.String()))
	return &response, nil
}

// RejectTransfer declines a transfer that has not completed yet, an
// already approved one included. Rejection carries the same
// authorization as approval.
func (s *TransferService) RejectTransfer(ctx context.Context, req TransferDecisionRequest) (*TransferResponse, error) {
	now := s.clock.Now()
	var response TransferResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.TransferRepo().FindByID(ctx, req.TransferID)
		if err != nil {
			return fmt.Errorf("failed to load transfer: %w", err)
		}
		if transfer == nil {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
		}

		if err := s.authorizeApproval(ctx, req.ActorID, transfer.SourceCenterID); err != nil {
			return err
		}
		if err := transfer.Reject(req.ActorID, req.Reason, now); err != nil {
			return err
		}
		if err := repos.TransferRepo().SaveWithLock(ctx, transfer); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}

		entry, err := transferAudit("transfer.rejected", transfer, req.ActorID, now,
			fmt.Sprintf(`{"reason":%q}`, req.Reason))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToTransferResponse(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("transfer rejected",
		zap.String("transfer_number", response.TransferNumber),
		zap.String("reason", req.Reason))
	return &response, nil
}

// CancelTransfer abandons a transfer before completion. No
// authorization is required to cancel.
func (s *TransferService) CancelTransfer(ctx context.Context, req TransferDecisionRequest) (*TransferResponse, error) {
	now := s.clock.Now()
	var response TransferResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.TransferRepo().FindByID(ctx, req.TransferID)
		if err != nil {
			return fmt.Errorf("failed to load transfer: %w", err)
		}
		if transfer == nil {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
		}

		if err := transfer.Cancel(req.ActorID, req.Reason, now); err != nil {
			return err
		}
		if err := repos.TransferRepo().SaveWithLock(ctx, transfer); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}

		entry, err := transferAudit("transfer.cancelled", transfer, req.ActorID, now,
			fmt.Sprintf(`{"reason":%q}`, req.Reason))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToTransferResponse(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("transfer cancelled",
		zap.String("transfer_number", response.TransferNumber),
		zap.String("reason", req.Reason))
	return &response, nil
}

// CompleteTransfer moves the stock. For every line it decrements the
// source, increments the destination (creating the destination stock
// record if needed) and writes a paired TRANSFER_OUT / TRANSFER_IN
// ledger entry, all in one transaction. The audit entry references the
// written movement ids.
func (s *TransferService) CompleteTransfer(ctx context.Context, req TransferDecisionRequest) (*TransferResponse, error) {
	now := s.clock.Now()
	var response TransferResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.TransferRepo().FindByID(ctx, req.TransferID)
		if err != nil {
			return fmt.Errorf("failed to load transfer: %w", err)
		}
		if transfer == nil {
			return shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
		}

		if err := transfer.Complete(req.ActorID, now); err != nil {
			return err
		}

		refID := transfer.ID
		movementIDs := make([]string, 0, len(transfer.Items)*2)
		for i := range transfer.Items {
			line := &transfer.Items[i]

			source, err := repos.StockItemRepo().FindByProductAndCenter(ctx, line.ProductID, transfer.SourceCenterID)
			if err != nil {
				return fmt.Errorf("failed to load source stock: %w", err)
			}
			if source == nil {
				return shared.NewDomainError("STOCK_NOT_FOUND", "Source stock record not found")
			}

			outMove, err := inventory.NewStockMovement(source, inventory.MovementTypeTransferOut, line.Quantity,
				inventory.MovementRefTransfer, &refID, req.ActorID, now)
			if err != nil {
				return err
			}
			if err := source.Decrease(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockItemRepo().SaveWithLock(ctx, source); err != nil {
				return fmt.Errorf("failed to save source stock: %w", err)
			}
			if err := repos.MovementRepo().Save(ctx, outMove); err != nil {
				return fmt.Errorf("failed to save movement: %w", err)
			}

			dest, err := repos.StockItemRepo().FindByProductAndCenter(ctx, line.ProductID, transfer.DestCenterID)
			if err != nil {
				return fmt.Errorf("failed to load destination stock: %w", err)
			}
			if dest == nil {
				dest, err = inventory.NewStockItem(line.ProductID, transfer.DestCenterID, 0, 0)
				if err != nil {
					return err
				}
			}

			inMove, err := inventory.NewStockMovement(dest, inventory.MovementTypeTransferIn, line.Quantity,
				inventory.MovementRefTransfer, &refID, req.ActorID, now)
			if err != nil {
				return err
			}
			if err := dest.Increase(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockItemRepo().Save(ctx, dest); err != nil {
				return fmt.Errorf("failed to save destination stock: %w", err)
			}
			if err := repos.MovementRepo().Save(ctx, inMove); err != nil {
				return fmt.Errorf("failed to save movement: %w", err)
			}

			movementIDs = append(movementIDs, outMove.ID.String(), inMove.ID.String())
		}

		if err := repos.TransferRepo().SaveWithLock(ctx, transfer); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}

		detail := fmt.Sprintf(`{"movement_ids":["%s"]}`, strings.Join(movementIDs, `","`))
		entry, err := transferAudit("transfer.completed", transfer, req.ActorID, now, detail)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToTransferResponse(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("transfer_number", response.TransferNumber),
		zap.Int("items", len(response.Items)))
	return &response, nil
}

// GetTransfer returns one transfer by ID
func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer: %w", err)
	}
	if transfer == nil {
		return nil, shared.NewDomainError("TRANSFER_NOT_FOUND", "Transfer not found")
	}
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// ListTransfersByCenter returns transfers where the center is source or
// destination
func (s *TransferService) ListTransfersByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]TransferResponse, error) {
	transfers, err := s.transferRepo.FindByCenter(ctx, centerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out, nil
}

func transferAudit(action string, transfer *inventory.StockTransfer, actorID uuid.UUID, at time.Time, detail string) (*audit.AuditLog, error) {
	entry, err := audit.NewAuditLog(action, "StockTransfer", transfer.ID, actorID, at)
	if err != nil {
		return nil, err
	}
	entry.WithCenter(transfer.SourceCenterID)
	if detail != "" {
		entry.WithDetail(detail)
	}
	return entry, nil
}
