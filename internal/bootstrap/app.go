package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/roofbook/internal/infra/config"
	"github.com/yanqian/roofbook/internal/infra/reminder"
)

// Cleanup releases process-wide resources after the server stops.
type Cleanup func(ctx context.Context)

// App encapsulates the HTTP server and background job lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	reminders *reminder.Scheduler
	cleanup   Cleanup
}

// NewApp is used by Wire to build the runnable app. reminders may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, reminders *reminder.Scheduler, cleanup Cleanup) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		reminders: reminders,
		cleanup:   cleanup,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.reminders != nil {
		a.reminders.Start()
		a.logger.Info("reminder scheduler started", "spec", a.cfg.Reminders.Spec)
	}

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if a.reminders != nil {
		a.reminders.Stop(shutdownCtx)
	}
	if a.cleanup != nil {
		a.cleanup(shutdownCtx)
	}
	return runErr
}
