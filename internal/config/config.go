// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"fillout-webhook/internal/models"
)

// Store backends.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Configuration validation errors.
var (
	ErrMissingSupabaseURL = errors.New("SUPABASE_URL is required")
	ErrMissingSupabaseKey = errors.New("SUPABASE_ANON_KEY is required")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when STORE_BACKEND=postgres")
	ErrInvalidBackend     = errors.New("STORE_BACKEND must be one of: rest, postgres, memory")
)

// Config holds all configuration values for the application.
type Config struct {
	// Supabase
	SupabaseURL     string        `env:"SUPABASE_URL"      env-required:"true"`
	SupabaseKey     string        `env:"SUPABASE_ANON_KEY" env-required:"true"`
	SupabaseTimeout time.Duration `env:"SUPABASE_TIMEOUT"  env-default:"30s"`

	// Store selection. The postgres backend talks to the same database
	// directly instead of through the REST gateway; memory keeps rows in
	// process and is only meant for local dry runs.
	StoreBackend string `env:"STORE_BACKEND" env-default:"rest"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS"  env-default:"10"`
	DBMinConns   int32  `env:"DB_MIN_CONNS"  env-default:"2"`

	// Form mapping
	EventVariant   string `env:"EVENT_VARIANT"   env-default:"basic"`
	DefaultCountry string `env:"DEFAULT_COUNTRY" env-default:"USA"`

	// AWS
	AWSRegion      string `env:"AWS_REGION"       env-default:"us-east-1"`
	ArchiveBucket  string `env:"ARCHIVE_BUCKET"`
	SESSenderEmail string `env:"SES_SENDER_EMAIL"`

	// Application
	Port     string `env:"PORT"      env-default:"8080"`
	Stage    string `env:"STAGE"     env-default:"dev"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load loads configuration from environment variables. A missing Supabase
// URL or key is an error.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and normalizes enum values.
func (c *Config) Validate() error {
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	if c.SupabaseURL == "" {
		return ErrMissingSupabaseURL
	}
	if strings.TrimSpace(c.SupabaseKey) == "" {
		return ErrMissingSupabaseKey
	}

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendREST, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return ErrInvalidBackend
	}

	variant, err := models.ParseEventVariant(c.EventVariant)
	if err != nil {
		return err
	}
	c.EventVariant = string(variant)

	return nil
}

// Variant returns the configured event variant.
func (c *Config) Variant() models.EventVariant {
	return models.EventVariant(c.EventVariant)
}

// ArchiveEnabled reports whether raw payloads are copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// NotificationsEnabled reports whether confirmation emails are sent.
func (c *Config) NotificationsEnabled() bool {
	return c.SESSenderEmail != ""
}
