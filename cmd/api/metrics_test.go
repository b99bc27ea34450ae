package main

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
	"github.com/flarecast/flarecast-backend/internal/metrics"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

func TestInstrumentation_FansOut(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	registry, err := metrics.NewRegistryWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	prom := newPromMetrics(prometheus.NewRegistry())
	inst := &instrumentation{prom: prom, otel: registry}
	ctx := context.Background()

	inst.RecordForecast(ctx, &forecast.Forecast{RiskScore: 40, RiskLevel: risk.LevelModerate}, 12*time.Millisecond)
	inst.RecordForecast(ctx, &forecast.Forecast{RiskLevel: risk.LevelLow, NeedsMoreData: true}, time.Millisecond)
	inst.RecordForecast(ctx, nil, time.Millisecond)
	inst.RecordFetchFailure(ctx, forecast.StoreProfile)
	inst.RecordAPIRequest(ctx, 30*time.Millisecond, "POST", "POST /api/v1/forecast", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.forecastsTotal.WithLabelValues("moderate", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.forecastsTotal.WithLabelValues("low", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.fetchFailuresTotal.WithLabelValues("profile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.httpRequestsTotal.WithLabelValues("POST", "POST /api/v1/forecast", "200")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["flarecast.forecast.total"])
	assert.True(t, names["flarecast.api.request_total"])
}

func TestInstrumentation_WithoutOTel(t *testing.T) {
	prom := newPromMetrics(prometheus.NewRegistry())
	inst := &instrumentation{prom: prom}

	assert.NotPanics(t, func() {
		inst.RecordFetchFailure(context.Background(), forecast.StoreEntries)
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.fetchFailuresTotal.WithLabelValues("log entries")))
}
