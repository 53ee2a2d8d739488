package database

import (
	"fmt"

	"gorm.io/gorm"

	"portfolio/logger"
	"portfolio/models"
)

func RunMigrations(db *gorm.DB, log logger.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Error("migrations failed", err)
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Info("migrations completed")
	return nil
}
