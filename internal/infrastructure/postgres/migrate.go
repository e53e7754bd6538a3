package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/fastygo/taskbot/internal/config"
)

// RunMigrations applies every pending migration when enabled in configuration.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	err := withMigrator(cfg, func(m *migrate.Migrate) error {
		return m.Up()
	})
	if err != nil {
		return err
	}

	logger.Info("database migrations applied")
	return nil
}

// Rollback reverts the given number of migrations.
func Rollback(cfg *config.Config, steps int, logger *zap.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := withMigrator(cfg, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	}); err != nil {
		return err
	}

	logger.Info("database migrations rolled back", zap.Int("steps", steps))
	return nil
}

func withMigrator(cfg *config.Config, fn func(m *migrate.Migrate) error) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(cfg.Migrations.Path))
	m, err := migrate.NewWithDatabaseInstance(sourceURL, cfg.Database.Name, driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
