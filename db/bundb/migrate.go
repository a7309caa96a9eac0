package bundb

import (
	"context"
	"fmt"
	"log/slog"

	linkmigrations "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator := migrate.NewMigrator(db, linkmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to unlock migrations", slog.Any("error", err))
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "Database schema is up to date")
		return nil
	}
	logger.InfoContext(ctx, "Database migrated", slog.String("group", group.String()))
	return nil
}
