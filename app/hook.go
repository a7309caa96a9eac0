package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
)

const shutdownTimeout = 20 * time.Second

// Shutdown stops the bot in reverse start order: inbound traffic first, then
// the modules, then the infrastructure they share.
func (app *App) Shutdown(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.InfoContext(ctx, "Shutting down application")

	var errs []error
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	modules := app.Modules.all()
	slices.Reverse(modules)
	for _, module := range modules {
		if err := module.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close module", attr.Error(err))
			errs = append(errs, err)
		}
	}

	if app.Session != nil {
		if err := app.Session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("discord session: %w", err))
		}
	}

	if err := app.closeResources(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := app.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Application shut down with errors", attr.Error(err))
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}
