package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/pharmacy-dispatch/internal/app/console"
	authpostgres "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/persistence/postgres"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pharmacy-dispatch/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := console.LoadConfig(os.Getenv("PHARMACTL_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level, _ := cfg.Level()
	level = min(level, slog.LevelInfo)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge tokens")
	}
	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to migrate token table: %v", err)
	}

	store := authpostgres.NewTokenStore(db, cfg.Profile)
	purged, err := store.PurgeExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("failed to purge tokens: %v", err)
	}
	logger.Info("token purge completed", slog.Int64("purged", purged))
}
