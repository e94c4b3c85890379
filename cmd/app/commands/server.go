package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/uidoperator/internal/app"
	"github.com/allisson/uidoperator/internal/config"
	"github.com/allisson/uidoperator/internal/snapshot"
)

const snapshotLoadTimeout = 30 * time.Second

// RunServer starts the operator. Every snapshot is loaded before the HTTP server accepts
// traffic; refreshers and the opt-out writer then run in the background. Blocks until
// SIGINT/SIGTERM or a fatal server error. On shutdown the servers stop first so queued
// opt-outs can be drained.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	refreshers, err := container.Refreshers()
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot refreshers: %w", err)
	}

	gate, err := container.OptOutGate()
	if err != nil {
		return fmt.Errorf("failed to initialize opt-out gate: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, snapshotLoadTimeout)
	err = snapshot.LoadAll(loadCtx, refreshers...)
	loadCancel()
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}

	// Workers outlive the signal context so the opt-out writer can drain after the servers stop.
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()

	workers, workerCtx := errgroup.WithContext(workerCtx)
	for _, r := range refreshers {
		workers.Go(func() error {
			return ignoreCanceled(r.Start(workerCtx))
		})
	}
	workers.Go(func() error {
		return ignoreCanceled(gate.Start(workerCtx))
	})

	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	var shutdownErrors []error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownErrors = append(shutdownErrors, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	stopWorkers()
	if err := workers.Wait(); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("background worker: %w", err))
	}

	return errors.Join(shutdownErrors...)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
