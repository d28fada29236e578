// Package db opens the ledger database and keeps its schema current.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/household-ledger/backend/config"
	"github.com/household-ledger/backend/internal/integration/persistence/model"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// Database is the ledger's GORM handle together with the pool it owns.
type Database struct {
	db *gorm.DB
}

// Connect opens the PostgreSQL database at cfg.URL.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Database, error) {
	return Open(ctx, postgres.Open(cfg.URL), cfg)
}

// Open opens dialector with the settings the repositories rely on. Unique
// violations must surface as gorm.ErrDuplicatedKey, so TranslateError is on.
func Open(ctx context.Context, dialector gorm.Dialector, cfg *config.DatabaseConfig) (*Database, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newQueryLogger(cfg.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "Database connection established",
		"dialect", dialector.Name(),
		"max_open_conns", cfg.MaxOpenConns,
		"slow_query_threshold", cfg.SlowQueryThreshold,
	)

	return &Database{db: gdb}, nil
}

// Gorm returns the handle the repositories are built on.
func (d *Database) Gorm() *gorm.DB {
	return d.db
}

// Migrate creates or updates the users, groups, memberships, taxonomy and
// budget tables.
func (d *Database) Migrate(ctx context.Context) error {
	models := model.All()
	if err := d.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	slog.InfoContext(ctx, "Database schema migrated", "models", len(models))
	return nil
}

// Healthy reports whether the database answers a ping.
func (d *Database) Healthy() bool {
	sqlDB, err := d.db.DB()
	if err != nil {
		slog.Error("Failed to get sql.DB for health check", "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		slog.Warn("Database health check failed", "error", err)
		return false
	}
	return true
}

// Close releases the connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for closing: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	slog.Info("Database connection closed")
	return nil
}

// newQueryLogger reports slow statements and query errors through slog.
// Missing rows are expected by the repositories and are not logged.
func newQueryLogger(slowThreshold time.Duration) logger.Interface {
	if slowThreshold <= 0 {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(slogWriter{}, logger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// slogWriter adapts GORM's printf-style logger output to slog.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...interface{}) {
	slog.Warn("Database query", "detail", fmt.Sprintf(format, args...))
}
