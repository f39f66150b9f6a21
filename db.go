package main

import (
	"context"
	"fmt"

	"adminpanel/migrations"
	"adminpanel/models"
	"adminpanel/pkg/config"
	"adminpanel/pkg/logging"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openDB connects to Postgres and, unless DB_AUTO_MIGRATE disables it,
// migrates every table and installs the files change trigger.
func openDB(ctx context.Context, cfg *config.Config, log logging.Logger) (*gorm.DB, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set; it is required unless RECORD_STORE=memory")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if !cfg.AutoMigrate {
		return db, nil
	}
	// Migrate models individually so a failure on one doesn't block others
	for _, m := range []any{&models.User{}, &models.RefreshToken{}, &models.Record{}, &models.FileMeta{}} {
		if err := db.AutoMigrate(m); err != nil {
			log.Warn(ctx, "migration warning", "model", fmt.Sprintf("%T", m), "err", err)
		}
	}
	if err := runSQLMigrations(ctx, db); err != nil {
		log.Warn(ctx, "sql migrations failed", "err", err)
	}
	return db, nil
}

// runSQLMigrations applies what AutoMigrate cannot express (triggers).
func runSQLMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, ".")
}
