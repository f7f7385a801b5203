package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/audit"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService orchestrates payment recording and cancellation.
// Writes go through the transaction scope so a payment row and its
// balance effect land atomically; reads use the plain repositories.
type PaymentService struct {
	scope       TransactionScope
	paymentRepo billing.PaymentRepository
	centerRepo  center.HospitalCenterRepository
	patientRepo patient.PatientRepository
	staffRepo   center.StaffAssignmentRepository
	clock       shared.Clock
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	paymentRepo billing.PaymentRepository,
	centerRepo center.HospitalCenterRepository,
	patientRepo patient.PatientRepository,
	staffRepo center.StaffAssignmentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		paymentRepo: paymentRepo,
		centerRepo:  centerRepo,
		patientRepo: patientRepo,
		staffRepo:   staffRepo,
		clock:       clock,
		logger:      logger.Named("payment_service"),
	}
}

func (s *PaymentService) validateCenter(ctx context.Context, id uuid.UUID) error {
	c, err := s.centerRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found or inactive")
	}
	return nil
}

func (s *PaymentService) validatePatient(ctx context.Context, id uuid.UUID) error {
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

// validateReceiver checks that the receiving user holds a staff
// assignment at the center the payment is recorded against
func (s *PaymentService) validateReceiver(ctx context.Context, receivedBy, centerID uuid.UUID) error {
	assignment, err := s.staffRepo.FindByUserAndCenter(ctx, receivedBy, centerID)
	if err != nil {
		return fmt.Errorf("failed to load staff assignment: %w", err)
	}
	if assignment == nil {
		return shared.NewDomainError("RECEIVER_NOT_FOUND", "Receiving staff is not assigned to this center")
	}
	return nil
}

// CreatePayment records a payment and applies it to the referenced
// balance in one transaction. For care episodes the episode balance
// moves; examinations are settled in full at creation, so recording a
// payment against one leaves no balance to update. The receiver must
// hold a staff assignment at the center, and every recorded payment
// leaves an audit trail entry.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	now := s.clock.Now()

	if err := s.validateCenter(ctx, req.CenterID); err != nil {
		return nil, err
	}
	if req.PatientID != nil {
		if err := s.validatePatient(ctx, *req.PatientID); err != nil {
			return nil, err
		}
	}
	if err := s.validateReceiver(ctx, req.ReceivedBy, req.CenterID); err != nil {
		return nil, err
	}

	payment, err := billing.NewPayment(
		req.ReferenceType,
		req.ReferenceID,
		req.CenterID,
		req.Method,
		req.Amount,
		req.ReceivedBy,
		now,
	)
	if err != nil {
		return nil, err
	}
	if req.PatientID != nil {
		payment.WithPatient(*req.PatientID)
	}
	if req.TransactionRef != "" {
		payment.WithTransactionRef(req.TransactionRef)
	}
	if req.Notes != "" {
		payment.WithNotes(req.Notes)
	}

	var remaining *decimal.Decimal

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		switch req.ReferenceType {
		case billing.ReferenceTypeCareEpisode:
			episode, err := repos.EpisodeRepo().FindByID(ctx, req.ReferenceID)
			if err != nil {
				return fmt.Errorf("failed to load care episode: %w", err)
			}
			if episode == nil {
				return shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
			}
			if err := episode.ApplyPayment(req.Amount); err != nil {
				return err
			}
			if err := repos.EpisodeRepo().SaveWithLock(ctx, episode); err != nil {
				return fmt.Errorf("failed to save care episode: %w", err)
			}
			balance := episode.RemainingBalance
			remaining = &balance

		case billing.ReferenceTypeExamination:
			examination, err := repos.ExaminationRepo().FindByID(ctx, req.ReferenceID)
			if err != nil {
				return fmt.Errorf("failed to load examination: %w", err)
			}
			if examination == nil {
				return shared.NewDomainError("EXAMINATION_NOT_FOUND", "Examination not found")
			}

		case billing.ReferenceTypeSale:
			return shared.NewDomainError("UNSUPPORTED_REFERENCE", "Sale payments are recorded by the sale workflow")
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry, err := audit.NewAuditLog("payment.recorded", "Payment", payment.ID, req.ReceivedBy, now)
		if err != nil {
			return err
		}
		entry.WithCenter(payment.CenterID).
			WithDetail(fmt.Sprintf(`{"reference_type":%q,"method":%q,"amount":%q}`,
				payment.ReferenceType, payment.Method, payment.Amount.String()))
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reference_type", payment.ReferenceType.String()),
		zap.String("amount", payment.Amount.String()))

	return &CreatePaymentResult{
		Payment:          ToPaymentResponse(payment),
		RemainingBalance: remaining,
	}, nil
}

// CancelPayment voids a payment and reverses its effect on the
// referenced balance, in one transaction. The reversal is exact: the
// episode ends up with the balance it would have had without the
// payment. Cancellations are written to the audit trail.
func (s *PaymentService) CancelPayment(ctx context.Context, req CancelPaymentRequest) (*PaymentResponse, error) {
	now := s.clock.Now()

	var response PaymentResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, req.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}

		if err := payment.Cancel(req.Reason, req.CancelledBy, now); err != nil {
			return err
		}

		if payment.ReferenceType == billing.ReferenceTypeCareEpisode {
			episode, err := repos.EpisodeRepo().FindByID(ctx, payment.ReferenceID)
			if err != nil {
				return fmt.Errorf("failed to load care episode: %w", err)
			}
			if episode == nil {
				return shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
			}
			if err := episode.ReversePayment(payment.Amount); err != nil {
				return err
			}
			if err := repos.EpisodeRepo().SaveWithLock(ctx, episode); err != nil {
				return fmt.Errorf("failed to save care episode: %w", err)
			}
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry, err := audit.NewAuditLog("payment.cancelled", "Payment", payment.ID, req.CancelledBy, now)
		if err != nil {
			return err
		}
		entry.WithCenter(payment.CenterID).
			WithDetail(fmt.Sprintf(`{"reason":%q,"amount":%q}`, req.Reason, payment.Amount.String()))
		if err := repos.AuditRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save audit entry: %w", err)
		}

		response = ToPaymentResponse(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("payment cancelled",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("reason", req.Reason))

	return &response, nil
}

// GetPayment returns one payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListPaymentsByReference returns all payments recorded against a
// billable reference, cancelled ones included
func (s *PaymentService) ListPaymentsByReference(ctx context.Context, refType billing.ReferenceType, refID uuid.UUID) ([]PaymentResponse, error) {
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE_TYPE", "Unknown reference type")
	}
	payments, err := s.paymentRepo.FindByReference(ctx, refType, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}

// ListPaymentsByPatient returns a patient's payment history
func (s *PaymentService) ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}
