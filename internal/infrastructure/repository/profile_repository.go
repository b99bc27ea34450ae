package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/flarecast/flarecast-backend/internal/domain/errors"
	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

type profileRepository struct {
	db Querier
}

// NewProfileRepository creates a new user profile repository
func NewProfileRepository(db Querier) forecast.ProfileRepository {
	return &profileRepository{db: db}
}

// Get loads a profile. A missing row yields apperrors.ErrProfileNotFound.
func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*journal.UserProfile, error) {
	query := `
		SELECT user_id, conditions, known_symptoms, known_triggers,
		       timezone, biological_sex, date_of_birth
		FROM user_profiles
		WHERE user_id = $1
	`

	var p journal.UserProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Conditions, &p.KnownSymptoms, &p.KnownTriggers,
		&p.Timezone, &p.BiologicalSex, &p.DateOfBirth,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, wrapError(err, "get user profile")
	}
	return &p, nil
}
