package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNoDSN is returned when no connection string is configured.
var ErrNoDSN = errors.New("postgres DSN is empty")

// Option tunes the connection pool.
type Option func(*poolSettings)

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	pingTimeout time.Duration
}

// WithMaxOpenConns caps concurrent connections. Client processes keep it low.
func WithMaxOpenConns(n int) Option {
	return func(p *poolSettings) { p.maxOpen = n }
}

// WithConnMaxLifetime recycles connections after d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(p *poolSettings) { p.maxLifetime = d }
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNoDSN
	}
	settings := poolSettings{maxOpen: 4, maxIdle: 2, maxLifetime: 30 * time.Minute, pingTimeout: 5 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(settings.maxOpen)
	sqlDB.SetMaxIdleConns(settings.maxIdle)
	sqlDB.SetConnMaxLifetime(settings.maxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, settings.pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Open dials dsn and returns the DB plus a cleanup function. Unlike Connect it
// never fails hard: an empty DSN or an unreachable server is logged and yields
// a nil DB, letting the caller pick a local fallback.
func Open(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*gorm.DB, func()) {
	if strings.TrimSpace(dsn) == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set, postgres-backed stores disabled")
		}
		return nil, func() {}
	}
	db, err := Connect(ctx, dsn, opts...)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to postgres", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		if logger != nil {
			logger.Warn("failed to unwrap postgres connection", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Debug("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }
}
