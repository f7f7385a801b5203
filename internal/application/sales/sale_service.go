package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/inventory"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/sales"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleNumberGenerator issues unique sale numbers in the
// SALE-yyyyMMdd-NNNNN format
type SaleNumberGenerator interface {
	NextSaleNumber(ctx context.Context, day time.Time) (string, error)
}

// SaleService rings up and cancels pharmacy sales. A sale, its stock
// decrements and the ledger entries are one transaction; immediate
// settlement happens after that transaction so a settlement failure
// never loses the sale.
type SaleService struct {
	scope       TransactionScope
	saleRepo    sales.SaleRepository
	patientRepo patient.PatientRepository
	numbers     SaleNumberGenerator
	clock       shared.Clock
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope TransactionScope,
	saleRepo sales.SaleRepository,
	patientRepo patient.PatientRepository,
	numbers SaleNumberGenerator,
	clock shared.Clock,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		scope:       scope,
		saleRepo:    saleRepo,
		patientRepo: patientRepo,
		numbers:     numbers,
		clock:       clock,
		logger:      logger.Named("sale_service"),
	}
}

func (s *SaleService) validatePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load patient: %w", err)
	}
	if p == nil {
		return shared.NewDomainError("PATIENT_NOT_FOUND", "Patient not found")
	}
	if !p.Active {
		return shared.NewDomainError("PATIENT_INACTIVE", "Patient record is deactivated")
	}
	return nil
}

// CreateSale validates the cart against the catalog and the center's
// stock, persists the sale with snapshot prices, decrements stock and
// writes one SALE ledger entry per line. With MarkPaid set the sale is
// settled in a follow-up transaction that also records the payment
// row; a failure there is reported in the result, not rolled into the
// sale.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_SALE", "A sale needs at least one item")
	}

	if req.PatientID != nil {
		if err := s.validatePatient(ctx, *req.PatientID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	number, err := s.numbers.NextSaleNumber(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sale number: %w", err)
	}

	sale, err := sales.NewSale(number, req.CenterID, req.SoldBy, now)
	if err != nil {
		return nil, err
	}
	if req.PatientID != nil {
		sale.WithPatient(*req.PatientID)
	}
	sale.Notes = req.Notes

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		productIDs := make([]uuid.UUID, len(req.Items))
		for i, line := range req.Items {
			productIDs[i] = line.ProductID
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := make(map[uuid.UUID]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		saleID := sale.ID
		for _, line := range req.Items {
			product, ok := byID[line.ProductID]
			if !ok {
				return shared.NewDomainError("PRODUCT_NOT_FOUND",
					fmt.Sprintf("Product %s not found", line.ProductID))
			}
			if !product.Active {
				return shared.NewDomainError("PRODUCT_INACTIVE",
					fmt.Sprintf("Product %s is no longer sold", product.Code))
			}

			item, err := repos.StockItemRepo().FindByProductAndCenter(ctx, line.ProductID, req.CenterID)
			if err != nil {
				return fmt.Errorf("failed to load stock: %w", err)
			}
			if item == nil || !item.HasSufficientStock(line.Quantity) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Not enough stock for %s", product.Name))
			}

			movement, err := inventory.NewStockMovement(item, inventory.MovementTypeSale, line.Quantity,
				inventory.MovementRefSale, &saleID, req.SoldBy, now)
			if err != nil {
				return err
			}
			if err := item.Decrease(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
				return fmt.Errorf("failed to save stock: %w", err)
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return fmt.Errorf("failed to save movement: %w", err)
			}

			if err := sale.AddItem(product.ID, product.Name, product.UnitPrice, line.Quantity); err != nil {
				return err
			}
		}

		if !req.DiscountAmount.IsZero() {
			if err := sale.ApplyDiscount(req.DiscountAmount); err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		entry, err := audit.NewAuditLog("sale.created", "Sale", sale.ID, req.SoldBy, now)
		if err != nil {
			return err
		}
		entry.WithCenter(sale.CenterID).
			WithDetail(fmt.Sprintf(`{"sale_number":%q,"final_amount":%q}`, sale.SaleNumber, sale.FinalAmount.String()))
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("final_amount", sale.FinalAmount.String()))

	result := &CreateSaleResult{Sale: ToSaleResponse(sale)}

	if req.MarkPaid {
		var paymentID *uuid.UUID
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			id, err := s.settle(ctx, repos, sale, req.PaymentMethod, req.SoldBy, s.clock.Now())
			paymentID = id
			return err
		})
		if err != nil {
			s.logger.Warn("sale settlement failed",
				zap.String("sale_id", sale.ID.String()),
				zap.Error(err))
			result.SettleError = err.Error()
		} else {
			result.Settled = true
			result.PaymentID = paymentID
			result.Sale = ToSaleResponse(sale)
		}
	}

	return result, nil
}

// settle marks the sale paid and records the matching payment row with
// a SALE reference, all on the given transactional repositories. A
// fully discounted sale settles without a payment row.
func (s *SaleService) settle(ctx context.Context, repos TransactionalRepositories, sale *sales.Sale, method billing.PaymentMethod, settledBy uuid.UUID, now time.Time) (*uuid.UUID, error) {
	if method == "" {
		method = billing.MethodCash
	}

	if err := sale.MarkPaid(now); err != nil {
		return nil, err
	}
	if err := repos.SaleRepo().SaveWithLock(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	var paymentID *uuid.UUID
	if sale.FinalAmount.IsPositive() {
		payment, err := billing.NewPayment(billing.ReferenceTypeSale, sale.ID, sale.CenterID,
			method, sale.FinalAmount, settledBy, now)
		if err != nil {
			return nil, err
		}
		if sale.PatientID != nil {
			payment.WithPatient(*sale.PatientID)
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to save payment: %w", err)
		}
		paymentID = &payment.ID
	}

	entry, err := audit.NewAuditLog("sale.settled", "Sale", sale.ID, settledBy, now)
	if err != nil {
		return nil, err
	}
	entry.WithCenter(sale.CenterID).
		WithDetail(fmt.Sprintf(`{"method":%q,"final_amount":%q}`, method, sale.FinalAmount.String()))
	if err := repos.AuditRepo().Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save audit entry: %w", err)
	}
	return paymentID, nil
}

// SettleSale marks a pending sale paid and records the matching
// payment against it
func (s *SaleService) SettleSale(ctx context.Context, req SettleSaleRequest) (*SaleResponse, error) {
	now := s.clock.Now()
	var response SaleResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, req.SaleID)
		if err != nil {
			return fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil {
			return shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}
		if _, err := s.settle(ctx, repos, sale, req.Method, req.SettledBy, now); err != nil {
			return err
		}
		response = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// CancelSale voids a sale and returns every line to stock through
// positive adjustment ledger entries annotated with the reason, in one
// transaction. Any payment recorded for the sale is voided with it.
// Cancellations are written to the audit trail.
func (s *SaleService) CancelSale(ctx context.Context, req CancelSaleRequest) (*SaleResponse, error) {
	now := s.clock.Now()
	var response SaleResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, req.SaleID)
		if err != nil {
			return fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil {
			return shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}

		if err := sale.Cancel(req.Reason, req.CancelledBy, now); err != nil {
			return err
		}

		saleID := sale.ID
		for i := range sale.Items {
			line := &sale.Items[i]
			item, err := repos.StockItemRepo().FindByProductAndCenter(ctx, line.ProductID, sale.CenterID)
			if err != nil {
				return fmt.Errorf("failed to load stock: %w", err)
			}
			if item == nil {
				return shared.NewDomainError("STOCK_NOT_FOUND", "Stock record not found")
			}

			movement, err := inventory.NewStockMovement(item, inventory.MovementTypeAdjustIn, line.Quantity,
				inventory.MovementRefAdjustment, &saleID, req.CancelledBy, now)
			if err != nil {
				return err
			}
			movement.WithReason(req.Reason)
			if err := item.Increase(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
				return fmt.Errorf("failed to save stock: %w", err)
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return fmt.Errorf("failed to save movement: %w", err)
			}
		}

		if err := repos.SaleRepo().SaveWithLock(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		payments, err := repos.PaymentRepo().FindByReference(ctx, billing.ReferenceTypeSale, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to load sale payments: %w", err)
		}
		for i := range payments {
			p := &payments[i]
			if p.IsCancelled() {
				continue
			}
			if err := p.Cancel(req.Reason, req.CancelledBy, now); err != nil {
				return err
			}
			if err := repos.PaymentRepo().Save(ctx, p); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
		}

		entry, err := audit.NewAuditLog("sale.cancelled", "Sale", sale.ID, req.CancelledBy, now)
		if err != nil {
			return err
		}
		entry.WithCenter(sale.CenterID).
			WithDetail(fmt.Sprintf(`{"reason":%q,"final_amount":%q}`, req.Reason, sale.FinalAmount.String()))
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("sale cancelled",
		zap.String("sale_id", req.SaleID.String()),
		zap.String("reason", req.Reason))

	return &response, nil
}

// GetSale returns one sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if sale == nil {
		return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSalesByCenter returns a center's sales
func (s *SaleService) ListSalesByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]SaleResponse, error) {
	list, err := s.saleRepo.FindByCenter(ctx, centerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	out := make([]SaleResponse, len(list))
	for i := range list {
		out[i] = ToSaleResponse(&list[i])
	}
	return out, nil
}

// ListSalesByPatient returns a patient's purchase history
func (s *SaleService) ListSalesByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]SaleResponse, error) {
	list, err := s.saleRepo.FindByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	out := make([]SaleResponse, len(list))
	for i := range list {
		out[i] = ToSaleResponse(&list[i])
	}
	return out, nil
}
