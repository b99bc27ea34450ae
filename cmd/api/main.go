package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flarecast/flarecast-backend/internal/api/rest"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/cache"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/database"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/repository"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/telemetry"
	"github.com/flarecast/flarecast-backend/internal/metrics"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
	"github.com/flarecast/flarecast-backend/migrations"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		migrate    = flag.Bool("migrate", false, "Apply database migrations before serving")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *migrate); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	logger.Info("starting flarecast api",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"port", cfg.Server.Port)

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("create zap logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	provider, err := telemetry.Initialize(ctx, cfg.Telemetry, cfg.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.ExportTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	if migrate {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := database.NewConnectionPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	health := rest.NewHealthService(cfg.Version, 5*time.Second)
	health.RegisterChecker("database", rest.CheckerFunc(pool.Ping))

	limiter, closeLimiter, err := newRateLimiter(ctx, cfg, zapLogger, health)
	if err != nil {
		return err
	}
	defer closeLimiter()

	registry, err := metrics.NewRegistryWithMeter(provider.MeterProvider.Meter(metrics.MeterName))
	if err != nil {
		return fmt.Errorf("create metrics registry: %w", err)
	}
	inst := &instrumentation{prom: newPromMetrics(prometheus.DefaultRegisterer), otel: registry}

	svc := forecast.NewService(
		repository.NewRepositories(pool.Pool()),
		forecast.Config{
			EntryLimit:         cfg.Forecast.EntryLimit,
			CorrelationLimit:   cfg.Forecast.CorrelationLimit,
			MedicationLookback: cfg.Forecast.MedicationLookback,
			FetchTimeout:       cfg.Forecast.FetchTimeout,
		},
		forecast.WithLogger(logger),
		forecast.WithMetrics(inst),
	)

	handler, err := rest.NewRouter(rest.RouterConfig{
		Service: svc,
		Health:  health,
		Auth: &rest.AuthConfig{
			JWTSecret: []byte(cfg.Security.JWTSecret),
			Issuer:    cfg.Security.Issuer,
			Audience:  cfg.Security.Audience,
			Leeway:    30 * time.Second,
		},
		RateLimiter: limiter,
		RateLimit: rest.RateLimitConfig{
			Requests: cfg.Security.RateLimit.Requests,
			Window:   cfg.Security.RateLimit.Window,
		},
		Metrics:          inst,
		Logger:           logger,
		ValidateContract: cfg.Server.OpenAPIValidation,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := rest.NewServer(rest.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, logger)

	return server.Run(ctx)
}

// newRateLimiter prefers redis so limits hold across instances and falls
// back to an in-process limiter when redis is disabled.
func newRateLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger, health *rest.HealthService) (cache.RateLimiter, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewLocalRateLimiter(cfg.Security.RateLimit.BurstSize), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	health.RegisterChecker("redis", rest.CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))

	return cache.NewRedisRateLimiter(client, logger), func() { closeRedis(client, logger) }, nil
}

func closeRedis(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("failed to close redis", zap.Error(err))
	}
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
