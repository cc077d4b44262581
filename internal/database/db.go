package database

import (
	"fmt"
	"time"

	"autocatalog-backend/internal/config"
	"autocatalog-backend/internal/logger"
	"autocatalog-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the Postgres database from cfg, migrates it and stores the
// handle in DB.
func Init(cfg *config.Config, log *zap.Logger) error {
	db, err := Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.NewGormLogger(log, 200*time.Millisecond),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	log.Info("database connected, migrations applied")
	return nil
}

// Open connects with the given dialector and runs AutoMigrate. It does not
// touch DB so tests can install their own handle.
func Open(dialector gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.Category{},
		&models.Product{},
		&models.Banner{},
		&models.News{},
		&models.Service{},
		&models.Order{},
		&models.Upload{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks the global connection.
func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
