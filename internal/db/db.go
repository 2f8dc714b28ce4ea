// Package db owns the database connection, schema migration and the seed
// data (permission rows, role profiles).
package db

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"autoparc/internal/config"
	"autoparc/internal/logger"
	"autoparc/internal/models"
)

// Connect opens the database with retries, migrates the schema and seeds
// reference data when the config asks for it.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := gormlogger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	var dbi *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		dbi, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		logger.L().Warn("db connection retry", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}
	if pingErr := dbi.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}

	if cfg.App.Migrations {
		if err := RunSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
	} else {
		if err := AutoMigrate(dbi); err != nil {
			return nil, err
		}
	}

	if cfg.App.Seed {
		if err := Seed(dbi); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return dbi, nil
}

// AutoMigrate creates or updates every table of the schema.
func AutoMigrate(dbi *gorm.DB) error {
	tables := []any{
		&models.Permission{}, &models.Profile{}, &models.User{},
		&models.Client{}, &models.Vehicule{}, &models.Fournisseur{},
		&models.CommandeGroupee{}, &models.Conteneur{}, &models.Commande{},
		&models.Montage{}, &models.Facture{},
		&models.Subcase{}, &models.Outil{}, &models.VerificationConteneur{},
		&models.PieceDetachee{},
	}
	for _, m := range tables {
		if err := dbi.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}
