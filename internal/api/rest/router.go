package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/cache"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	Service     forecast.Service
	Health      *HealthService
	Auth        *AuthConfig
	RateLimiter cache.RateLimiter
	RateLimit   RateLimitConfig
	Metrics     APIMetrics
	Logger      *slog.Logger

	// ValidateContract enables OpenAPI request validation on the forecast
	// route.
	ValidateContract bool
	// MetricsHandler serves GET /metrics; promhttp.Handler when nil.
	MetricsHandler http.Handler
}

// NewRouter builds the API handler.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Service == nil || cfg.Auth == nil {
		return nil, errors.New("rest: forecast service and auth config are required")
	}
	base := NewBaseHandler(cfg.Logger)
	mux := http.NewServeMux()

	forecastChain := []Middleware{NewAuthMiddleware(cfg.Auth, base).Middleware()}
	if cfg.RateLimiter != nil {
		forecastChain = append(forecastChain, rateLimitMiddleware(cfg.RateLimiter, cfg.RateLimit, base))
	}
	if cfg.ValidateContract {
		cv, err := NewContractValidator()
		if err != nil {
			return nil, err
		}
		forecastChain = append(forecastChain, contractMiddleware(cv, base))
	}

	forecastHandler := NewForecastHandler(base, cfg.Service)
	mux.Handle("POST /api/v1/forecast", Chain(forecastHandler.CreateForecast(), forecastChain...))

	health := cfg.Health
	if health == nil {
		health = NewHealthService(APIVersion, 0)
	}
	mux.Handle("GET /health", health.LivenessHandler())
	mux.Handle("GET /ready", health.ReadinessHandler())

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	mux.Handle("GET /metrics", metricsHandler)

	global := []Middleware{
		otelMiddleware,
		recoveryMiddleware(base),
		securityHeadersMiddleware,
		requestIDMiddleware,
		loggingMiddleware(base.logger),
	}
	// Innermost so the mux sets Pattern on the request it sees.
	if cfg.Metrics != nil {
		global = append(global, metricsMiddleware(cfg.Metrics))
	}

	return Chain(mux, global...), nil
}

func otelMiddleware(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "flarecast.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
