// Package db opens the gorm connection and runs schema migrations.
package db

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/diewo77/comptable/internal/config"
)

// Connect opens the database selected by cfg.Driver. Postgres connections are
// retried a few times so the server survives a database that is still booting.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		// TranslateError maps driver unique-violation errors onto
		// gorm.ErrDuplicatedKey, which the invoice numbering retry relies on.
		TranslateError: true,
	}

	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case "postgres":
		var db *gorm.DB
		var err error
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return db, nil
			}
			log.Warn().Err(err).Int("attempt", i+1).Msg("retrying database connection")
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}
