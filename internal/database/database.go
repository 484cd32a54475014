package database

import (
	"fmt"

	"github.com/akshayrajput12/chronical-sub004/internal/config"
	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and runs auto-migration.
func Connect(cfg *config.AppConfig) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// migrate runs GORM auto-migration for all models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CategoryModel{},
		&models.CityModel{},
		&models.PostModel{},
		&models.EventModel{},
		&models.FAQItemModel{},
		&models.GalleryPostModel{},
		&models.StatModel{},
		&models.SlugRedirectModel{},
	)
}
