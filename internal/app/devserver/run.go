// Package devserver wires the in-memory pharmacy backend into a runnable
// HTTP process.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	backend "github.com/Apurer/pharmacy-dispatch/internal/devserver"
	platformobservability "github.com/Apurer/pharmacy-dispatch/internal/platform/observability"
)

// Run boots the development backend and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, backend.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	handler, err := NewHandler(cfg, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.Addr(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pharmacy dev backend listening", slog.String("addr", cfg.Addr()), slog.String("environment", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("pharmacy dev backend exited", slog.String("addr", cfg.Addr()), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("pharmacy dev backend stopped")
	return nil
}

// NewHandler builds the seeded store, the token issuer and the gin engine.
func NewHandler(cfg Config, logger *slog.Logger) (http.Handler, error) {
	if cfg.Environment != "local" && cfg.Environment != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	store := backend.NewStore()
	if cfg.Seed {
		if err := backend.Seed(store); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
		logger.Info("store seeded", slog.String("admin", backend.AdminEmail), slog.String("operator", backend.OperatorEmail))
	}
	issuer, err := backend.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, time.Now)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	return backend.NewServer(store, issuer, backend.WithLogger(logger)).Router(), nil
}
