package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"booktrack/internal/config"
)

const (
	defaultMaxAttempts     = 10
	defaultDelayBetweenTry = 2 * time.Second
)

// Connect opens the configured database. sqlite opens directly; postgres
// goes through a retry loop because the server may still be starting.
func Connect(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		logger.Info("connected to sqlite database", "path", cfg.SQLitePath)
		return db, nil
	}
	return connectWithRetry(cfg, logger)
}

func connectWithRetry(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			sqlDB, err2 := db.DB()
			if err2 == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					logger.Info("connected to postgres database", "host", cfg.DBHost)
					return db, nil
				} else {
					err = pingErr
				}
			} else {
				err = err2
			}
		}

		logger.Warn("db not ready", "attempt", attempt, "max", defaultMaxAttempts, "error", err)
		time.Sleep(defaultDelayBetweenTry)
	}

	return nil, fmt.Errorf("could not connect to db after %d attempts: %w", defaultMaxAttempts, err)
}
