package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewRepositories wires the four read-only stores the forecaster consumes.
func NewRepositories(db Querier) forecast.Repositories {
	return forecast.Repositories{
		Entries:      NewEntryRepository(db),
		Correlations: NewCorrelationRepository(db),
		Profiles:     NewProfileRepository(db),
		Medications:  NewMedicationRepository(db),
	}
}
