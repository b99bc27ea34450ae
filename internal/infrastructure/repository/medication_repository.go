package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

type medicationRepository struct {
	db Querier
}

// NewMedicationRepository creates a new medication log repository
func NewMedicationRepository(db Querier) forecast.MedicationRepository {
	return &medicationRepository{db: db}
}

// ListSince returns doses taken at or after since, oldest first.
func (r *medicationRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]journal.MedicationLog, error) {
	query := `
		SELECT id, user_id, name, dosage, taken_at
		FROM medication_logs
		WHERE user_id = $1 AND taken_at >= $2
		ORDER BY taken_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, wrapError(err, "query medication logs")
	}

	logs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[journal.MedicationLog])
	if err != nil {
		return nil, wrapError(err, "scan medication logs")
	}
	return logs, nil
}
