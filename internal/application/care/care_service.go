package care

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/care"
	"github.com/hms/backend/internal/domain/center"
	"github.com/hms/backend/internal/domain/patient"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CareService manages care episodes and examinations. Balance
// mutations stay with the payment workflow; this service only opens,
// re-bills and closes episodes and records billed acts.
type CareService struct {
	episodeRepo     care.CareEpisodeRepository
	examinationRepo care.ExaminationRepository
	patientRepo     patient.PatientRepository
	centerRepo      center.HospitalCenterRepository
	clock           shared.Clock
	logger          *zap.Logger
}

// NewCareService creates a new CareService
func NewCareService(
	episodeRepo care.CareEpisodeRepository,
	examinationRepo care.ExaminationRepository,
	patientRepo patient.PatientRepository,
	centerRepo center.HospitalCenterRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *CareService {
	return &CareService{
		episodeRepo:     episodeRepo,
		examinationRepo: examinationRepo,
		patientRepo:     patientRepo,
		centerRepo:      centerRepo,
		clock:           clock,
		logger:          logger.Named("care_service"),
	}
}

func (s *CareService) validatePatient(ctx context.Context, id uuid.UUID) error {
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

func (s *CareService) validateCenter(ctx context.Context, id uuid.UUID) error {
	c, err := s.centerRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return shared.NewDomainError("CENTER_NOT_FOUND", "Hospital center not found or inactive")
	}
	return nil
}

// OpenEpisode opens a billable episode for an active patient
func (s *CareService) OpenEpisode(ctx context.Context, req OpenEpisodeRequest) (*EpisodeResponse, error) {
	if err := s.validatePatient(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if err := s.validateCenter(ctx, req.CenterID); err != nil {
		return nil, err
	}

	episode, err := care.NewCareEpisode(req.PatientID, req.CenterID, req.Description, req.TotalCost, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.episodeRepo.Save(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to save episode: %w", err)
	}

	s.logger.Info("episode opened",
		zap.String("episode_id", episode.ID.String()),
		zap.String("patient_id", episode.PatientID.String()),
		zap.String("total_cost", episode.TotalCost.String()))

	resp := ToEpisodeResponse(episode)
	return &resp, nil
}

// AdjustEpisodeCost re-bills an open episode. The remaining balance
// is recomputed against the amount already paid.
func (s *CareService) AdjustEpisodeCost(ctx context.Context, req AdjustEpisodeCostRequest) (*EpisodeResponse, error) {
	episode, err := s.episodeRepo.FindByID(ctx, req.EpisodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load episode: %w", err)
	}
	if episode == nil {
		return nil, shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
	}
	if episode.Status == care.EpisodeStatusClosed {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot re-bill a closed episode")
	}

	if err := episode.AdjustTotalCost(req.TotalCost); err != nil {
		return nil, err
	}

	if err := s.episodeRepo.SaveWithLock(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to save episode: %w", err)
	}

	resp := ToEpisodeResponse(episode)
	return &resp, nil
}

// CloseEpisode ends an episode. Closing does not require full payment;
// the remaining balance stays visible on the closed record.
func (s *CareService) CloseEpisode(ctx context.Context, id uuid.UUID) (*EpisodeResponse, error) {
	episode, err := s.episodeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load episode: %w", err)
	}
	if episode == nil {
		return nil, shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
	}

	if err := episode.Close(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.episodeRepo.SaveWithLock(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to save episode: %w", err)
	}

	s.logger.Info("episode closed",
		zap.String("episode_id", episode.ID.String()),
		zap.String("remaining_balance", episode.RemainingBalance.String()))

	resp := ToEpisodeResponse(episode)
	return &resp, nil
}

// GetEpisode returns one episode with its balance
func (s *CareService) GetEpisode(ctx context.Context, id uuid.UUID) (*EpisodeResponse, error) {
	episode, err := s.episodeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load episode: %w", err)
	}
	if episode == nil {
		return nil, shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
	}
	resp := ToEpisodeResponse(episode)
	return &resp, nil
}

// ListEpisodesByPatient returns a patient's episodes
func (s *CareService) ListEpisodesByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]EpisodeResponse, error) {
	episodes, err := s.episodeRepo.FindByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return ToEpisodeResponses(episodes), nil
}

// ListOpenEpisodesByCenter returns the open episodes at a center
func (s *CareService) ListOpenEpisodesByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]EpisodeResponse, error) {
	episodes, err := s.episodeRepo.FindOpenByCenter(ctx, centerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return ToEpisodeResponses(episodes), nil
}

// RecordExamination records a billed medical act, optionally attached
// to an open episode
func (s *CareService) RecordExamination(ctx context.Context, req RecordExaminationRequest) (*ExaminationResponse, error) {
	if err := s.validatePatient(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if err := s.validateCenter(ctx, req.CenterID); err != nil {
		return nil, err
	}

	examination, err := care.NewExamination(req.PatientID, req.CenterID, req.Label, req.FinalAmount, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if req.EpisodeID != nil {
		episode, err := s.episodeRepo.FindByID(ctx, *req.EpisodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load episode: %w", err)
		}
		if episode == nil {
			return nil, shared.NewDomainError("EPISODE_NOT_FOUND", "Care episode not found")
		}
		if episode.PatientID != req.PatientID {
			return nil, shared.NewDomainError("EPISODE_MISMATCH", "Episode belongs to another patient")
		}
		if err := examination.AttachToEpisode(episode.ID); err != nil {
			return nil, err
		}
	}

	if err := s.examinationRepo.Save(ctx, examination); err != nil {
		return nil, fmt.Errorf("failed to save examination: %w", err)
	}

	s.logger.Info("examination recorded",
		zap.String("examination_id", examination.ID.String()),
		zap.String("patient_id", examination.PatientID.String()),
		zap.String("amount", examination.FinalAmount.String()))

	resp := ToExaminationResponse(examination)
	return &resp, nil
}

// ListExaminationsByPatient returns a patient's examinations
func (s *CareService) ListExaminationsByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]ExaminationResponse, error) {
	examinations, err := s.examinationRepo.FindByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list examinations: %w", err)
	}
	return ToExaminationResponses(examinations), nil
}
