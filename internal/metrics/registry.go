package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/flarecast/flarecast-backend/internal/service/forecast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for forecast metrics.
const MeterName = "github.com/flarecast/flarecast-backend"

// Registry holds the forecast and API instruments
type Registry struct {
	meter metric.Meter

	// Forecast metrics
	ForecastDuration metric.Float64Histogram
	ForecastCounter  metric.Int64Counter
	FetchFailures    metric.Int64Counter
	FactorCount      metric.Int64Histogram
	ForecastScore    metric.Int64Histogram

	// API metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter
}

var _ forecast.MetricsRecorder = (*Registry)(nil)

// NewRegistry creates instruments on the global meter provider.
func NewRegistry() (*Registry, error) {
	return NewRegistryWithMeter(otel.Meter(MeterName))
}

// NewRegistryWithMeter creates instruments on the given meter.
func NewRegistryWithMeter(meter metric.Meter) (*Registry, error) {
	r := &Registry{meter: meter}

	if err := r.initForecastMetrics(); err != nil {
		return nil, err
	}
	if err := r.initAPIMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) initForecastMetrics() error {
	var err error

	r.ForecastDuration, err = r.meter.Float64Histogram(
		"flarecast.forecast.duration",
		metric.WithDescription("End-to-end forecast latency including store reads"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.ForecastCounter, err = r.meter.Int64Counter(
		"flarecast.forecast.total",
		metric.WithDescription("Forecasts produced, by risk level"),
	)
	if err != nil {
		return err
	}

	r.FetchFailures, err = r.meter.Int64Counter(
		"flarecast.forecast.fetch_failures",
		metric.WithDescription("Failed reads from backing stores"),
	)
	if err != nil {
		return err
	}

	r.FactorCount, err = r.meter.Int64Histogram(
		"flarecast.forecast.factors",
		metric.WithDescription("Risk factors reported per forecast"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 6, 8, 12),
	)
	if err != nil {
		return err
	}

	r.ForecastScore, err = r.meter.Int64Histogram(
		"flarecast.forecast.score",
		metric.WithDescription("Distribution of risk scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 35, 50, 55, 65, 75, 90),
	)
	return err
}

func (r *Registry) initAPIMetrics() error {
	var err error

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"flarecast.api.request_duration",
		metric.WithDescription("Duration of API requests in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"flarecast.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)
	return err
}

// RecordForecast records latency and outcome of a completed forecast.
func (r *Registry) RecordForecast(ctx context.Context, f *forecast.Forecast, elapsed time.Duration) {
	if f == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("risk_level", string(f.RiskLevel)),
		attribute.Bool("needs_more_data", f.NeedsMoreData),
	)

	r.ForecastDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	r.ForecastCounter.Add(ctx, 1, attrs)
	if !f.NeedsMoreData {
		r.FactorCount.Record(ctx, int64(len(f.Factors)))
		r.ForecastScore.Record(ctx, int64(f.RiskScore))
	}
}

// RecordFetchFailure counts a failed read from the named store.
func (r *Registry) RecordFetchFailure(ctx context.Context, store string) {
	r.FetchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("store", store)))
}

// RecordAPIRequest records API request metrics
func (r *Registry) RecordAPIRequest(ctx context.Context, duration time.Duration, method, route string, statusCode int) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)

	r.APIRequestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	r.APIRequestCounter.Add(ctx, 1, attrs)
}
