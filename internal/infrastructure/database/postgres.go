package database

import (
	"fmt"
	"log/slog"

	"github.com/sangkips/brewpos-api/internal/config"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Maps unique violations to gorm.ErrDuplicatedKey for request id dedup.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	slog.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	slog.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Product{},
		&entity.Sale{},
		&entity.SaleItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SeedDemoCatalog inserts a small coffee shop catalog. Existing rows are left untouched.
func SeedDemoCatalog(db *gorm.DB) error {
	products := []entity.Product{
		{ID: "ESP-001", Name: "Espresso", Category: "Coffee", Price: decimal.RequireFromString("90.00"), Stock: 200, IsActive: true},
		{ID: "AME-001", Name: "Americano", Category: "Coffee", Price: decimal.RequireFromString("100.00"), Stock: 200, IsActive: true},
		{ID: "LAT-001", Name: "Cafe Latte", Category: "Coffee", Price: decimal.RequireFromString("130.00"), Stock: 150, IsActive: true},
		{ID: "CAR-001", Name: "Caramel Macchiato", Category: "Coffee", Price: decimal.RequireFromString("160.00"), Stock: 120, IsActive: true},
		{ID: "MAT-001", Name: "Matcha Latte", Category: "Non-Coffee", Price: decimal.RequireFromString("150.00"), Stock: 80, IsActive: true},
		{ID: "CRO-001", Name: "Butter Croissant", Category: "Pastry", Price: decimal.RequireFromString("85.00"), Stock: 30, IsActive: true},
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products)
	if result.Error != nil {
		return fmt.Errorf("failed to seed catalog: %w", result.Error)
	}

	slog.Info("demo catalog seeded", "inserted", result.RowsAffected)
	return nil
}
