// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config is the full runtime configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"*"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// StoreTimeout bounds every store round trip made by a request.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	DB    Postgres
	Mongo Mongo
	Auth  Auth

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"event-rsvp"`
}

// Postgres holds PostgreSQL connection settings.
type Postgres struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"eventrsvp"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"20"`
}

// DSN builds a libpq-compatible connection string.
func (c Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Mongo holds MongoDB connection settings.
type Mongo struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DB" envDefault:"event-rsvp"`
}

// Auth holds token settings.
type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"event-rsvp"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, mongo, memory; got %q", c.StoreDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Auth.JWTSecret == "" && c.StoreDriver != DriverMemory {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}
