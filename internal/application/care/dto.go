package care

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/care"
	"github.com/shopspring/decimal"
)

// OpenEpisodeRequest carries the data to open a care episode
type OpenEpisodeRequest struct {
	PatientID   uuid.UUID       `json:"patient_id" binding:"required"`
	CenterID    uuid.UUID       `json:"center_id" binding:"required"`
	Description string          `json:"description"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// AdjustEpisodeCostRequest carries a new billed total for an episode
type AdjustEpisodeCostRequest struct {
	EpisodeID uuid.UUID       `json:"episode_id" binding:"required"`
	TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
}

// EpisodeResponse is the read model for a care episode
type EpisodeResponse struct {
	ID               uuid.UUID          `json:"id"`
	PatientID        uuid.UUID          `json:"patient_id"`
	CenterID         uuid.UUID          `json:"center_id"`
	Description      string             `json:"description,omitempty"`
	TotalCost        decimal.Decimal    `json:"total_cost"`
	AmountPaid       decimal.Decimal    `json:"amount_paid"`
	RemainingBalance decimal.Decimal    `json:"remaining_balance"`
	Status           care.EpisodeStatus `json:"status"`
	FullyPaid        bool               `json:"fully_paid"`
	StartedAt        time.Time          `json:"started_at"`
	ClosedAt         *time.Time         `json:"closed_at,omitempty"`
}

// ToEpisodeResponse maps a domain episode to its read model
func ToEpisodeResponse(e *care.CareEpisode) EpisodeResponse {
	return EpisodeResponse{
		ID:               e.ID,
		PatientID:        e.PatientID,
		CenterID:         e.CenterID,
		Description:      e.Description,
		TotalCost:        e.TotalCost,
		AmountPaid:       e.AmountPaid,
		RemainingBalance: e.RemainingBalance,
		Status:           e.Status,
		FullyPaid:        e.IsFullyPaid(),
		StartedAt:        e.StartedAt,
		ClosedAt:         e.ClosedAt,
	}
}

// ToEpisodeResponses maps a slice of episodes
func ToEpisodeResponses(episodes []care.CareEpisode) []EpisodeResponse {
	out := make([]EpisodeResponse, len(episodes))
	for i := range episodes {
		out[i] = ToEpisodeResponse(&episodes[i])
	}
	return out
}

// RecordExaminationRequest carries the data for a billed medical act
type RecordExaminationRequest struct {
	PatientID   uuid.UUID       `json:"patient_id" binding:"required"`
	CenterID    uuid.UUID       `json:"center_id" binding:"required"`
	EpisodeID   *uuid.UUID      `json:"episode_id"`
	Label       string          `json:"label" binding:"required"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// ExaminationResponse is the read model for an examination
type ExaminationResponse struct {
	ID          uuid.UUID       `json:"id"`
	PatientID   uuid.UUID       `json:"patient_id"`
	CenterID    uuid.UUID       `json:"center_id"`
	EpisodeID   *uuid.UUID      `json:"episode_id,omitempty"`
	Label       string          `json:"label"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	PerformedAt time.Time       `json:"performed_at"`
}

// ToExaminationResponse maps a domain examination to its read model
func ToExaminationResponse(x *care.Examination) ExaminationResponse {
	return ExaminationResponse{
		ID:          x.ID,
		PatientID:   x.PatientID,
		CenterID:    x.CenterID,
		EpisodeID:   x.EpisodeID,
		Label:       x.Label,
		FinalAmount: x.FinalAmount,
		PerformedAt: x.PerformedAt,
	}
}

// ToExaminationResponses maps a slice of examinations
func ToExaminationResponses(examinations []care.Examination) []ExaminationResponse {
	out := make([]ExaminationResponse, len(examinations))
	for i := range examinations {
		out[i] = ToExaminationResponse(&examinations[i])
	}
	return out
}
