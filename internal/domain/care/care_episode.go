package care

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EpisodeStatus represents the lifecycle state of a care episode
type EpisodeStatus string

const (
	EpisodeStatusOpen   EpisodeStatus = "OPEN"
	EpisodeStatusClosed EpisodeStatus = "CLOSED"
)

// CareEpisode is a billable course of treatment for one patient.
// It carries the running balance maintained by the payment workflow:
// AmountPaid moves only through ApplyPayment/ReversePayment and
// RemainingBalance is always max(0, TotalCost - AmountPaid).
type CareEpisode struct {
	shared.BaseAggregateRoot
	PatientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CenterID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(255)"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status           EpisodeStatus   `gorm:"type:varchar(20);not null;default:'OPEN'"`
	StartedAt        time.Time       `gorm:"type:timestamptz;not null"`
	ClosedAt         *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (CareEpisode) TableName() string {
	return "care_episodes"
}

// NewCareEpisode opens a billable episode for a patient
func NewCareEpisode(patientID, centerID uuid.UUID, description string, totalCost decimal.Decimal, startedAt time.Time) (*CareEpisode, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient ID cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if totalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}

	return &CareEpisode{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PatientID:         patientID,
		CenterID:          centerID,
		Description:       description,
		TotalCost:         totalCost,
		AmountPaid:        decimal.Zero,
		RemainingBalance:  totalCost,
		Status:            EpisodeStatusOpen,
		StartedAt:         startedAt,
	}, nil
}

// ApplyPayment records an amount paid against the episode and
// recomputes the remaining balance.
func (e *CareEpisode) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	e.AmountPaid = e.AmountPaid.Add(amount)
	e.recalculateBalance()
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// ReversePayment undoes a previously applied amount. The amount must
// not exceed what has been paid; AmountPaid never goes negative.
func (e *CareEpisode) ReversePayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.GreaterThan(e.AmountPaid) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount exceeds amount paid")
	}

	e.AmountPaid = e.AmountPaid.Sub(amount)
	e.recalculateBalance()
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// AdjustTotalCost changes the billed total (additional acts billed
// during the episode) and recomputes the balance.
func (e *CareEpisode) AdjustTotalCost(totalCost decimal.Decimal) error {
	if totalCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}
	e.TotalCost = totalCost
	e.recalculateBalance()
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// Close ends the episode
func (e *CareEpisode) Close(at time.Time) error {
	if e.Status == EpisodeStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Episode is already closed")
	}
	e.Status = EpisodeStatusClosed
	e.ClosedAt = &at
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// IsFullyPaid returns true when nothing remains to pay
func (e *CareEpisode) IsFullyPaid() bool {
	return e.RemainingBalance.IsZero()
}

func (e *CareEpisode) recalculateBalance() {
	remaining := e.TotalCost.Sub(e.AmountPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	e.RemainingBalance = remaining
}
