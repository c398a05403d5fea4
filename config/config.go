// config/config.go - Environment Configuration
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minJWTSecretLength = 32

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`

	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Archiver  ArchiverConfig
}

// DatabaseConfig holds connection settings. Driver "sqlite" is meant for
// local development only.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"questboard.db"`

	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"questboard"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// RateLimitConfig holds the per-IP token bucket settings
type RateLimitConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxRequests     int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	Window          time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	AuthMaxRequests int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"5"`
	AuthWindow      time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"5m"`
}

// ArchiverConfig controls the background job that closes expired quests
type ArchiverConfig struct {
	Enabled  bool          `env:"QUEST_ARCHIVER_ENABLED" envDefault:"true"`
	Interval time.Duration `env:"QUEST_ARCHIVER_INTERVAL" envDefault:"10m"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported (use postgres or sqlite)", c.Database.Driver))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set (generate one with: openssl rand -base64 64)"))
	} else if len(c.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.AuthMaxRequests <= 0 || c.RateLimit.AuthWindow <= 0) {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_MAX and AUTH_RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Archiver.Enabled && c.Archiver.Interval <= 0 {
		errs = append(errs, errors.New("QUEST_ARCHIVER_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DSN returns DATABASE_URL, or a keyword/value DSN built from the DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
