package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.StoreTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.App.PremiumDays)
	assert.Empty(t, cfg.App.AdminEmails)
	assert.True(t, cfg.App.DefaultVATRate.Equal(decimal.Zero))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ADMIN_EMAILS", " Owner@Example.com , second@example.com ,")
	t.Setenv("DEFAULT_VAT_RATE", "18")
	t.Setenv("PREMIUM_DAYS", "7")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"owner@example.com", "second@example.com"}, cfg.App.AdminEmails)
	assert.True(t, cfg.App.DefaultVATRate.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, 7, cfg.App.PremiumDays)
}

func TestDatabaseURLAndDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, User: "comptable", Password: "pw",
		DBName: "comptable", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=comptable password=pw dbname=comptable sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://comptable:pw@db:5432/comptable?sslmode=disable", d.URL())
}
