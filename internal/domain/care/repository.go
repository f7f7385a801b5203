package care

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// CareEpisodeRepository provides access to care episodes
type CareEpisodeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CareEpisode, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]CareEpisode, error)
	FindOpenByCenter(ctx context.Context, centerID uuid.UUID, filter shared.Filter) ([]CareEpisode, error)
	Save(ctx context.Context, episode *CareEpisode) error
	// SaveWithLock persists using optimistic locking on the version
	// column. The payment workflow relies on it so concurrent balance
	// mutations cannot silently overwrite each other.
	SaveWithLock(ctx context.Context, episode *CareEpisode) error
}

// ExaminationRepository provides access to examinations
type ExaminationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Examination, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID, filter shared.Filter) ([]Examination, error)
	Save(ctx context.Context, examination *Examination) error
}
