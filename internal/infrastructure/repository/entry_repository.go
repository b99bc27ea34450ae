package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

// entryRepository reads log_entries. Readings are JSONB bags decoded as-is.
type entryRepository struct {
	db Querier
}

// NewEntryRepository creates a new log entry repository
func NewEntryRepository(db Querier) forecast.EntryRepository {
	return &entryRepository{db: db}
}

// ListRecent returns the newest limit entries, oldest first.
func (r *entryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]journal.LogEntry, error) {
	query := `
		SELECT id, user_id, kind, occurred_at, severity, symptoms, triggers,
		       note, physiological, environmental, created_at
		FROM (
			SELECT *
			FROM log_entries
			WHERE user_id = $1
			ORDER BY occurred_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapError(err, "query log entries")
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, wrapError(err, "scan log entries")
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (journal.LogEntry, error) {
	var (
		e        journal.LogEntry
		kind     string
		severity *string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &kind, &e.Timestamp, &severity, &e.Symptoms, &e.Triggers,
		&e.Note, &e.Physiological, &e.Environmental, &e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	e.Kind = journal.ParseEntryKind(kind)
	if severity != nil {
		s := journal.Severity(*severity)
		e.Severity = &s
	}
	return e, nil
}
