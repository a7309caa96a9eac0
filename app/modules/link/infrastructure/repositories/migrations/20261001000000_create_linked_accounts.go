package linkmigrations

import (
	"context"
	"fmt"

	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating linked_accounts table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*linkdb.LinkedAccount)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create linked_accounts table: %w", err)
			}

			if _, err := tx.NewCreateIndex().
				Model((*linkdb.LinkedAccount)(nil)).
				Index("idx_linked_accounts_faceit_id").
				Column("faceit_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create faceit_id index: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping linked_accounts table...")

		if _, err := db.NewDropTable().
			Model((*linkdb.LinkedAccount)(nil)).
			IfExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop linked_accounts table: %w", err)
		}
		return nil
	})
}
