package care

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Examination is a single billed medical act (lab test, imaging).
// Examinations are billed in full at creation and carry no running
// balance; payments referencing one validate its existence but do not
// mutate a ledger.
type Examination struct {
	shared.BaseAggregateRoot
	PatientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CenterID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	EpisodeID   *uuid.UUID      `gorm:"type:uuid;index"`
	Label       string          `gorm:"type:varchar(200);not null"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PerformedAt time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Examination) TableName() string {
	return "examinations"
}

// NewExamination records a billed medical act
func NewExamination(patientID, centerID uuid.UUID, label string, finalAmount decimal.Decimal, performedAt time.Time) (*Examination, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient ID cannot be empty")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Examination label cannot be empty")
	}
	if finalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Examination amount cannot be negative")
	}

	return &Examination{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PatientID:         patientID,
		CenterID:          centerID,
		Label:             label,
		FinalAmount:       finalAmount,
		PerformedAt:       performedAt,
	}, nil
}

// AttachToEpisode links the examination to a care episode
func (x *Examination) AttachToEpisode(episodeID uuid.UUID) error {
	if episodeID == uuid.Nil {
		return shared.NewDomainError("INVALID_EPISODE", "Episode ID cannot be empty")
	}
	x.EpisodeID = &episodeID
	x.UpdatedAt = time.Now()
	x.IncrementVersion()
	return nil
}
