// Package db opens the database and brings its schema up to date.
package db

import (
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-pis/internal/config"
	"github.com/diewo77/go-pis/internal/models"
)

// RetryDelay is the pause between connection attempts.
var RetryDelay = 2 * time.Second

// Connect opens the configured database, retrying while it is not reachable yet.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	retries := max(cfg.Retries, 1)
	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying",
			zap.Int("attempt", i+1), zap.Int("of", retries), zap.Error(err))
		if i < retries-1 {
			time.Sleep(RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", retries, err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(cfg.DSN())))
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		dsn := NormalizeDSN(cfg.DSN())
		if dsn == "" {
			return nil, errors.New("postgres DSN is empty, check DATABASE_DSN or DB_* settings")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Migrate brings the schema up to date. With MIGRATIONS enabled on postgres the
// versioned SQL files in MigrationsDir are applied; otherwise gorm AutoMigrate is used.
func Migrate(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.App.Migrations && cfg.Database.Driver == config.DriverPostgres {
		log.Info("running sql migrations", zap.String("dir", cfg.App.MigrationsDir))
		if err := runSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := db.AutoMigrate(&models.PI{}); err != nil {
		return fmt.Errorf("automigrate %T: %w", &models.PI{}, err)
	}

	// sanity check: ensure required core tables exist
	if !db.Migrator().HasTable(&models.PI{}) {
		return errors.New("missing table after migration: " + models.PI{}.TableName())
	}
	return nil
}

// runSQLMigrations executes migrations in dir using golang-migrate file source.
func runSQLMigrations(dir, databaseURL string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
