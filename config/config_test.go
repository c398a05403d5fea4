package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10*time.Minute, cfg.Archiver.Interval)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_JWTSecret(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{TTL: time.Hour},
	}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET must be set")

	cfg.JWT.Secret = "short"
	assert.ErrorContains(t, cfg.Validate(), "at least 32 characters")

	cfg.JWT.Secret = testSecret
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{Driver: "sqlite"},
		JWT:       JWTConfig{Secret: testSecret, TTL: time.Hour},
		RateLimit: RateLimitConfig{Enabled: true},
	}
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Driver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql"},
		JWT:      JWTConfig{Secret: testSecret, TTL: time.Hour},
	}
	assert.ErrorContains(t, cfg.Validate(), `DB_DRIVER "mysql"`)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: "5433", User: "quest", Password: "pw", Name: "board", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=quest password=pw dbname=board sslmode=require", d.DSN())

	d.URL = "postgres://quest:pw@db:5433/board"
	assert.Equal(t, d.URL, d.DSN())
}

func TestValidate_Archiver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{Secret: testSecret, TTL: time.Hour},
		Archiver: ArchiverConfig{Enabled: true},
	}
	assert.ErrorContains(t, cfg.Validate(), "QUEST_ARCHIVER_INTERVAL")

	cfg.Archiver.Interval = time.Minute
	assert.NoError(t, cfg.Validate())
}
