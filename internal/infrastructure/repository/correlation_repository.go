package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

type correlationRepository struct {
	db Querier
}

// NewCorrelationRepository creates a repository over learned correlations
func NewCorrelationRepository(db Querier) forecast.CorrelationRepository {
	return &correlationRepository{db: db}
}

// ListByConfidence returns up to limit records, most confident first.
func (r *correlationRepository) ListByConfidence(ctx context.Context, userID uuid.UUID, limit int) ([]journal.CorrelationRecord, error) {
	query := `
		SELECT id, user_id, trigger_type, trigger_value, outcome_type, outcome_value,
		       occurrences, confidence, avg_delay_minutes, last_occurred
		FROM correlations
		WHERE user_id = $1
		ORDER BY confidence DESC, occurrences DESC, id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapError(err, "query correlations")
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (journal.CorrelationRecord, error) {
		var c journal.CorrelationRecord
		err := row.Scan(
			&c.ID, &c.UserID, &c.TriggerType, &c.TriggerValue, &c.OutcomeType, &c.OutcomeValue,
			&c.Occurrences, &c.Confidence, &c.AvgDelayMinutes, &c.LastOccurred,
		)
		return c, err
	})
	if err != nil {
		return nil, wrapError(err, "scan correlations")
	}
	return records, nil
}
