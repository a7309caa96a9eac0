package linkdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new link repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Exists reports whether the Discord user has a link.
func (r *Impl) Exists(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*LinkedAccount)(nil)).
		Where("discord_id = ?", discordID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check linked account: %w", err)
	}
	return exists, nil
}

// Get returns the link for a Discord user.
func (r *Impl) Get(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (*LinkedAccount, error) {
	db = r.resolveDB(db)
	account := new(LinkedAccount)
	err := db.NewSelect().
		Model(account).
		Where("discord_id = ?", discordID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get linked account: %w", err)
	}
	return account, nil
}

// Insert stores a link, leaving an existing link for the same user untouched.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, account *LinkedAccount) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(account).
		On("CONFLICT (discord_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert linked account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rows == 1, nil
}

// Delete removes the link for a Discord user.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*LinkedAccount)(nil)).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete linked account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows > 0, nil
}

// Count returns the number of linked users.
func (r *Impl) Count(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*LinkedAccount)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count linked accounts: %w", err)
	}
	return n, nil
}

// ListAll returns every link ordered by creation time.
func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]LinkedAccount, error) {
	db = r.resolveDB(db)
	var accounts []LinkedAccount
	err := db.NewSelect().
		Model(&accounts).
		Order("created_at ASC", "discord_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}
	return accounts, nil
}
