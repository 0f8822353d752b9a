// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Query    QueryConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string   `env:"PORT" envDefault:"8000"`
	ReadTimeout  int      `env:"SERVER_READ_TIMEOUT" envDefault:"15"`  // seconds
	WriteTimeout int      `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"` // seconds
	IdleTimeout  int      `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`  // seconds
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig selects and locates the database.
// Driver is "sqlite" (Path) or "postgres" (DSN, or the discrete fields).
type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	Path     string `env:"DB_PATH" envDefault:"pis.db"`
	RawDSN   string `env:"DATABASE_DSN"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"pis"`
	Password string `env:"DB_PASSWORD" envDefault:"pis"`
	DBName   string `env:"DB_NAME" envDefault:"pis"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Debug    bool   `env:"DB_DEBUG" envDefault:"false"`
	Retries  int    `env:"DB_CONNECT_RETRIES" envDefault:"5"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev             bool   `env:"DEV" envDefault:"true"`
	Migrations      bool   `env:"MIGRATIONS" envDefault:"false"`
	MigrationsDir   string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	PatchNullClears bool   `env:"PATCH_NULL_CLEARS" envDefault:"false"`
}

// QueryConfig bounds search pagination.
type QueryConfig struct {
	DefaultLimit int `env:"QUERY_DEFAULT_LIMIT" envDefault:"100"`
	MaxLimit     int `env:"QUERY_MAX_LIMIT" envDefault:"1000"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DSN returns the connection string handed to the gorm driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the connection string in URL format, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	if d.Driver == DriverSQLite {
		return "sqlite3://" + d.Path
	}
	if strings.HasPrefix(d.RawDSN, "postgres://") || strings.HasPrefix(d.RawDSN, "postgresql://") {
		return d.RawDSN
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver))
	}
	if c.Query.MaxLimit < 1 {
		errs = append(errs, fmt.Errorf("QUERY_MAX_LIMIT must be positive, got %d", c.Query.MaxLimit))
	}
	if c.Query.DefaultLimit < 1 || c.Query.DefaultLimit > c.Query.MaxLimit {
		errs = append(errs, fmt.Errorf("QUERY_DEFAULT_LIMIT must be between 1 and QUERY_MAX_LIMIT, got %d", c.Query.DefaultLimit))
	}
	if c.Database.Retries < 1 {
		errs = append(errs, fmt.Errorf("DB_CONNECT_RETRIES must be positive, got %d", c.Database.Retries))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables.
// Existing .env files are loaded first without overriding variables already set.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
