package main

import (
	"log/slog"
	"os"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/telemetry"
)

// Validates configuration and exits; cmd/api serves traffic.
func main() {
	cfg, err := config.Load(os.Getenv("FLARECAST_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, os.Stdout)
	logger.Info("configuration valid",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"redis_enabled", cfg.Redis.Enabled,
		"telemetry_enabled", cfg.Telemetry.Enabled)
}
