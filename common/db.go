package common

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portfolio/config"
	"portfolio/logger"
)

// Open opens dsn with the named driver ("sqlite" or "postgres").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func ConnectDb(cfg config.Config, log logger.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.DB.Driver, err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	return db, nil
}

// ConnectAnalyticsDb opens the separate analytics database. It returns nil
// when none is configured; analytics are then disabled.
func ConnectAnalyticsDb(cfg config.Config, log logger.Logger) *gorm.DB {
	if cfg.Analytics.DSN == "" {
		log.Info("analytics dsn not set, analytics disabled")
		return nil
	}

	db, err := Open(cfg.Analytics.Driver, cfg.Analytics.DSN)
	if err != nil {
		log.Error("open analytics db", err)
		return nil
	}
	log.Info("analytics database connected")
	return db
}
