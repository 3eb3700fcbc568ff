// Package migration applies the schema. MySQL uses versioned goose scripts
// embedded in the binary; SQLite uses gorm AutoMigrate over the models.
package migration

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/orrisdesk/internal/infrastructure/database"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

//go:embed scripts/*.sql
var scripts embed.FS

const scriptsDir = "scripts"

type Strategy interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB, steps int) error
	Status(db *gorm.DB) error
	Version(db *gorm.DB) (int64, error)
	Name() string
}

// ForDriver picks the strategy matching the database driver.
func ForDriver(driver string, log logger.Interface) Strategy {
	if driver == database.DriverMySQL {
		return NewGooseStrategy(log)
	}
	return NewAutoMigrateStrategy(log)
}

type GooseStrategy struct {
	logger logger.Interface
}

func NewGooseStrategy(log logger.Interface) *GooseStrategy {
	return &GooseStrategy{logger: log.With("component", "migration.goose")}
}

func (s *GooseStrategy) Name() string { return "goose" }

func (s *GooseStrategy) prepare() error {
	goose.SetBaseFS(scripts)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

func (s *GooseStrategy) Up(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}

	current, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	s.logger.Infow("current migration status", "version", current)

	if err := goose.Up(sqlDB, scriptsDir); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}
	s.logger.Infow("migration completed successfully", "from_version", current, "to_version", final)
	return nil
}

func (s *GooseStrategy) Down(db *gorm.DB, steps int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if err := goose.Down(sqlDB, scriptsDir); err != nil {
			s.logger.Errorw("down migration failed", "step", i+1, "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}
	s.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return err
	}
	if err := goose.Status(sqlDB, scriptsDir); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	return nil
}

func (s *GooseStrategy) Version(db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := s.prepare(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// AutoMigrateStrategy has no history; Down is unsupported and Version is
// always zero.
type AutoMigrateStrategy struct {
	logger logger.Interface
}

func NewAutoMigrateStrategy(log logger.Interface) *AutoMigrateStrategy {
	return &AutoMigrateStrategy{logger: log.With("component", "migration.automigrate")}
}

func (s *AutoMigrateStrategy) Name() string { return "gorm_auto_migrate" }

func (s *AutoMigrateStrategy) Up(db *gorm.DB) error {
	all := models.All()
	if err := db.AutoMigrate(all...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(all))
	return nil
}

func (s *AutoMigrateStrategy) Down(*gorm.DB, int) error {
	return fmt.Errorf("%s does not support down migrations", s.Name())
}

func (s *AutoMigrateStrategy) Status(db *gorm.DB) error {
	m := db.Migrator()
	for _, model := range models.All() {
		s.logger.Infow("table status", "model", fmt.Sprintf("%T", model), "exists", m.HasTable(model))
	}
	return nil
}

func (s *AutoMigrateStrategy) Version(*gorm.DB) (int64, error) {
	return 0, nil
}
