package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
)

const routerStartTimeout = 30 * time.Second

// Start brings the bot online and blocks until ctx is cancelled.
func (app *App) Start(ctx context.Context) error {
	logger := app.Observability.Logger

	if err := app.Queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job queue: %w", err)
	}

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-app.Router.Running():
		logger.InfoContext(ctx, "Watermill router running")
	case err := <-routerErr:
		return fmt.Errorf("watermill router stopped before starting: %w", err)
	case <-time.After(routerStartTimeout):
		return errors.New("timed out waiting for watermill router")
	}

	if err := app.Session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	var wg sync.WaitGroup
	for _, module := range app.Modules.all() {
		wg.Add(1)
		go module.Run(ctx, &wg)
	}

	app.httpServer = &http.Server{
		Addr:              app.Config.Observability.MetricsAddress,
		Handler:           NewHTTPHandler(app.Observability.Registry, app.healthChecks()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "Serving metrics and health", attr.String("address", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", attr.Error(err))
		}
	}()

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := app.Shutdown(shutdownCtx)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("Modules did not stop before the shutdown timeout")
	}
	return err
}

func (app *App) healthChecks() map[string]HealthCheck {
	return map[string]HealthCheck{
		"database": func(ctx context.Context) error {
			return app.DB.GetDB().PingContext(ctx)
		},
		"router": func(ctx context.Context) error {
			if !app.Router.IsRunning() {
				return errors.New("not running")
			}
			return nil
		},
		"discord": func(ctx context.Context) error {
			if !app.Session.DataReady {
				return errors.New("gateway not ready")
			}
			return nil
		},
	}
}
