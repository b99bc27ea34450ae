package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/errors"
	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Store names used in errors, logs and metrics.
const (
	StoreEntries      = "log entries"
	StoreCorrelations = "correlations"
	StoreProfile      = "profile"
	StoreMedications  = "medication logs"
)

// Config tunes how much history the service loads.
type Config struct {
	EntryLimit         int
	CorrelationLimit   int
	MedicationLookback time.Duration
	FetchTimeout       time.Duration
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		EntryLimit:         1000,
		CorrelationLimit:   100,
		MedicationLookback: 90 * 24 * time.Hour,
		FetchTimeout:       10 * time.Second,
	}
}

// Repositories bundles the four read-only stores.
type Repositories struct {
	Entries      EntryRepository
	Correlations CorrelationRepository
	Profiles     ProfileRepository
	Medications  MedicationRepository
}

// Option configures the service.
type Option func(*service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *service) { s.tracer = tracer }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// service implements the Service interface
type service struct {
	repos   Repositories
	cfg     Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics MetricsRecorder
	now     func() time.Time

	evaluate func(Snapshot, Request, time.Time) *Forecast
}

// NewService creates a new forecasting service
func NewService(repos Repositories, cfg Config, opts ...Option) Service {
	defaults := DefaultConfig()
	if cfg.EntryLimit <= 0 {
		cfg.EntryLimit = defaults.EntryLimit
	}
	if cfg.CorrelationLimit <= 0 {
		cfg.CorrelationLimit = defaults.CorrelationLimit
	}
	if cfg.MedicationLookback <= 0 {
		cfg.MedicationLookback = defaults.MedicationLookback
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}

	s := &service{
		repos:   repos,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/flarecast/flarecast-backend/internal/service/forecast"),
		metrics: noopMetrics{},
		now:     time.Now,

		evaluate: Evaluate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast loads the user's history and scores the next 24 hours.
func (s *service) Forecast(ctx context.Context, userID uuid.UUID, req *Request) (*Forecast, error) {
	if userID == uuid.Nil {
		return nil, errors.NewUnauthorizedError("authenticated user required")
	}
	if req == nil {
		req = &Request{}
	}

	ctx, span := s.tracer.Start(ctx, "forecast.Service.Forecast",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	started := s.now()
	snap, err := s.fetch(ctx, userID, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	result, err := s.compute(ctx, snap, *req, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		return nil, err
	}

	elapsed := s.now().Sub(started)
	s.metrics.RecordForecast(ctx, result, elapsed)
	span.SetAttributes(
		attribute.Int("forecast.score", result.RiskScore),
		attribute.String("forecast.level", string(result.RiskLevel)),
		attribute.Int("forecast.factors", len(result.Factors)),
		attribute.Bool("forecast.needs_more_data", result.NeedsMoreData),
	)

	if result.NeedsMoreData {
		s.logger.InfoContext(ctx, "insufficient history for forecast",
			"user_id", userID, "entries", len(snap.Entries))
	} else {
		s.logger.DebugContext(ctx, "forecast computed",
			"user_id", userID,
			"score", result.RiskScore,
			"level", result.RiskLevel,
			"factors", len(result.Factors),
			"elapsed_ms", elapsed.Milliseconds())
	}
	return result, nil
}

// fetch loads all four stores concurrently. Any failure aborts the whole
// snapshot; the prior depends on complete flare counts.
func (s *service) fetch(ctx context.Context, userID uuid.UUID, now time.Time) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "forecast.fetch")
	defer span.End()

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := s.repos.Entries.ListRecent(gctx, userID, s.cfg.EntryLimit)
		if err != nil {
			return s.fetchFailed(gctx, StoreEntries, err)
		}
		snap.Entries = entries
		return nil
	})

	g.Go(func() error {
		records, err := s.repos.Correlations.ListByConfidence(gctx, userID, s.cfg.CorrelationLimit)
		if err != nil {
			return s.fetchFailed(gctx, StoreCorrelations, err)
		}
		snap.Correlations = records
		return nil
	})

	g.Go(func() error {
		profile, err := s.repos.Profiles.Get(gctx, userID)
		switch {
		case errors.IsType(err, errors.ErrorTypeNotFound):
			snap.Profile = journal.UserProfile{UserID: userID}
			return nil
		case err != nil:
			return s.fetchFailed(gctx, StoreProfile, err)
		case profile == nil:
			snap.Profile = journal.UserProfile{UserID: userID}
		default:
			snap.Profile = *profile
		}
		return nil
	})

	g.Go(func() error {
		logs, err := s.repos.Medications.ListSince(gctx, userID, now.Add(-s.cfg.MedicationLookback))
		if err != nil {
			return s.fetchFailed(gctx, StoreMedications, err)
		}
		snap.Medications = logs
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Snapshot{}, err
	}
	return snap, nil
}

// fetchFailed reports a store failure. A fetch cut short because a sibling
// already failed is not a failure of its own store.
func (s *service) fetchFailed(ctx context.Context, store string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return errors.NewUpstreamError(store, err)
	}
	s.metrics.RecordFetchFailure(ctx, store)
	s.logger.ErrorContext(ctx, "forecast fetch failed", "store", store, "error", err)
	return errors.NewUpstreamError(store, err)
}

// compute runs the pure evaluation, converting a panic into a
// computation error so one bad record cannot take the process down.
func (s *service) compute(ctx context.Context, snap Snapshot, req Request, now time.Time) (result *Forecast, err error) {
	_, span := s.tracer.Start(ctx, "forecast.compute")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "forecast computation panicked",
				"panic", r, "stack", string(debug.Stack()))
			result = nil
			err = errors.NewComputationError(fmt.Errorf("panic: %v", r))
		}
	}()

	return s.evaluate(snap, req, now), nil
}
