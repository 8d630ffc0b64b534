package postgres

import (
	"fmt"
	"log"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/migrate"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres/models"
)

// Open connects to the database and brings the schema up to date, through the
// SQL migrations when a path is configured and AutoMigrate otherwise.
func Open(cfg config.DB, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.Dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.Dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := Prepare(db, cfg.MigrationsPath, logger); err != nil {
		return nil, err
	}
	return db, nil
}

// Prepare applies the schema to an already opened database.
func Prepare(db *gorm.DB, migrationsPath string, logger *slog.Logger) error {
	if migrationsPath != "" {
		return migrate.RunMigrations(db, migrationsPath, logger)
	}
	if err := db.AutoMigrate(&models.ProgramModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func MustInitDB(cfg config.DB, logger *slog.Logger) *gorm.DB {
	db, err := Open(cfg, logger)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return db
}
