package main

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flarecast/flarecast-backend/internal/metrics"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

// promMetrics holds the Prometheus collectors scraped from /metrics.
type promMetrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	forecastsTotal      *prometheus.CounterVec
	forecastDuration    prometheus.Histogram
	forecastScore       prometheus.Histogram
	fetchFailuresTotal  *prometheus.CounterVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	m := &promMetrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flarecast",
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flarecast",
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "route"},
		),
		forecastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flarecast",
				Subsystem: "forecast",
				Name:      "computed_total",
				Help:      "Forecasts computed by risk level",
			},
			[]string{"risk_level", "needs_more_data"},
		),
		forecastDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "flarecast",
				Subsystem: "forecast",
				Name:      "duration_seconds",
				Help:      "Fetch plus scoring time per forecast",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		forecastScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "flarecast",
				Subsystem: "forecast",
				Name:      "risk_score",
				Help:      "Distribution of risk scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		fetchFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flarecast",
				Subsystem: "forecast",
				Name:      "fetch_failures_total",
				Help:      "Failed reads by backing store",
			},
			[]string{"store"},
		),
	}
	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.forecastsTotal,
		m.forecastDuration,
		m.forecastScore,
		m.fetchFailuresTotal,
	)
	return m
}

// instrumentation fans every measurement out to Prometheus and, when
// configured, the OpenTelemetry registry.
type instrumentation struct {
	prom *promMetrics
	otel *metrics.Registry
}

var _ forecast.MetricsRecorder = (*instrumentation)(nil)

func (i *instrumentation) RecordForecast(ctx context.Context, f *forecast.Forecast, elapsed time.Duration) {
	if f == nil {
		return
	}
	i.prom.forecastsTotal.WithLabelValues(string(f.RiskLevel), strconv.FormatBool(f.NeedsMoreData)).Inc()
	i.prom.forecastDuration.Observe(elapsed.Seconds())
	if !f.NeedsMoreData {
		i.prom.forecastScore.Observe(float64(f.RiskScore))
	}
	if i.otel != nil {
		i.otel.RecordForecast(ctx, f, elapsed)
	}
}

func (i *instrumentation) RecordFetchFailure(ctx context.Context, store string) {
	i.prom.fetchFailuresTotal.WithLabelValues(store).Inc()
	if i.otel != nil {
		i.otel.RecordFetchFailure(ctx, store)
	}
}

func (i *instrumentation) RecordAPIRequest(ctx context.Context, duration time.Duration, method, route string, statusCode int) {
	i.prom.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	i.prom.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if i.otel != nil {
		i.otel.RecordAPIRequest(ctx, duration, method, route, statusCode)
	}
}
