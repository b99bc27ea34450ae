package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/flarecast/flarecast-backend/internal/infrastructure/config"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/telemetry"
	"github.com/flarecast/flarecast-backend/migrations"
)

// migrator is the subset of *migrate.Migrate the CLI drives.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		action     = flag.String("action", "up", "Migration action: up, down, steps, goto, force, version")
		steps      = flag.Int("steps", 0, "Relative steps for the steps action (negative rolls back)")
		version    = flag.Int("version", -1, "Target version for goto and force")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, os.Stderr)

	m, err := migrations.New(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := run(m, *action, *steps, *version, logger); err != nil {
		logger.Error("migration failed", "action", *action, "error", err)
		os.Exit(1)
	}
}

func run(m migrator, action string, steps, version int, logger *slog.Logger) error {
	var err error
	switch action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if steps == 0 {
			return errors.New("steps must be non-zero")
		}
		err = m.Steps(steps)
	case "goto":
		if version < 0 {
			return errors.New("version is required for goto")
		}
		err = m.Migrate(uint(version))
	case "force":
		if version < 0 {
			return errors.New("version is required for force")
		}
		err = m.Force(version)
	case "version":
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date")
		err = nil
	}
	if err != nil {
		return err
	}

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info("migration complete", "action", action, "version", v, "dirty", dirty)
	return nil
}
