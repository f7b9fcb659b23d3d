package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/models"
)

// Migrate applies the schema with gorm's AutoMigrate. This is the default
// path for development and sqlite; production postgres deployments run SQL
// migrations instead (see MigrateSQL).
func Migrate(db *gorm.DB) error {
	toMigrate := []any{
		&models.Profile{},
		&models.Account{},
		&models.Transaction{},
		&models.StockItem{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.Employee{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL runs versioned SQL migrations from ./migrations against a
// postgres URL using golang-migrate.
func MigrateSQL(databaseURL string) error {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
