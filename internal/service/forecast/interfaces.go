package forecast

import (
	"context"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/google/uuid"
)

// Service defines the flare forecasting service interface
type Service interface {
	// Forecast scores the next 24 hours for an authenticated user
	Forecast(ctx context.Context, userID uuid.UUID, req *Request) (*Forecast, error)
}

// EntryRepository reads journal entries
type EntryRepository interface {
	// ListRecent returns the newest limit entries in any order; the engine sorts them
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]journal.LogEntry, error)
}

// CorrelationRepository reads learned trigger associations
type CorrelationRepository interface {
	// ListByConfidence returns up to limit records, highest confidence first
	ListByConfidence(ctx context.Context, userID uuid.UUID, limit int) ([]journal.CorrelationRecord, error)
}

// ProfileRepository reads user profiles
type ProfileRepository interface {
	// Get returns the profile or a not-found error
	Get(ctx context.Context, userID uuid.UUID) (*journal.UserProfile, error)
}

// MedicationRepository reads medication administration events
type MedicationRepository interface {
	// ListSince returns doses taken at or after since, oldest first
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]journal.MedicationLog, error)
}

// MetricsRecorder receives forecast telemetry
type MetricsRecorder interface {
	RecordForecast(ctx context.Context, f *Forecast, elapsed time.Duration)
	RecordFetchFailure(ctx context.Context, store string)
}

type noopMetrics struct{}

func (noopMetrics) RecordForecast(context.Context, *Forecast, time.Duration) {}
func (noopMetrics) RecordFetchFailure(context.Context, string)              {}
