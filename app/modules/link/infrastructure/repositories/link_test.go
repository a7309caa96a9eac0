package linkdb_test

import (
	"context"
	"testing"

	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	linkmigrations "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories/migrations"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/Black-And-White-Club/elo-bot/db/bundb"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := bundb.SQLiteDB(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := migrate.NewMigrator(db, linkmigrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func discordID() sharedtypes.DiscordID {
	return sharedtypes.DiscordID(gofakeit.Numerify("##################"))
}

func TestInsertAndExists(t *testing.T) {
	ctx := context.Background()
	repo := linkdb.NewRepository(setupDB(t))
	id := discordID()

	exists, err := repo.Exists(ctx, nil, id)
	require.NoError(t, err)
	assert.False(t, exists)

	inserted, err := repo.Insert(ctx, nil, &linkdb.LinkedAccount{DiscordID: id, FaceitID: "faceit-1"})
	require.NoError(t, err)
	assert.True(t, inserted)

	exists, err = repo.Exists(ctx, nil, id)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.Get(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.FaceitID("faceit-1"), got.FaceitID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInsert_SecondLinkForSameUserIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := linkdb.NewRepository(setupDB(t))
	id := discordID()

	inserted, err := repo.Insert(ctx, nil, &linkdb.LinkedAccount{DiscordID: id, FaceitID: "first"})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.Insert(ctx, nil, &linkdb.LinkedAccount{DiscordID: id, FaceitID: "second"})
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := repo.Get(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.FaceitID("first"), got.FaceitID)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := linkdb.NewRepository(setupDB(t))
	keep, drop := discordID(), discordID()

	for _, id := range []sharedtypes.DiscordID{keep, drop} {
		_, err := repo.Insert(ctx, nil, &linkdb.LinkedAccount{DiscordID: id, FaceitID: sharedtypes.FaceitID(gofakeit.UUID())})
		require.NoError(t, err)
	}

	deleted, err := repo.Delete(ctx, nil, drop)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, nil, drop)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.Get(ctx, nil, drop)
	assert.ErrorIs(t, err, linkdb.ErrNotFound)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListAll(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := linkdb.NewRepository(db)

	ids := []sharedtypes.DiscordID{"100", "200", "300"}
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, id := range ids {
			if _, err := repo.Insert(ctx, tx, &linkdb.LinkedAccount{
				DiscordID: id,
				FaceitID:  sharedtypes.FaceitID([]string{"a", "b", "c"}[i]),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	accounts, err := repo.ListAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for i, account := range accounts {
		assert.Equal(t, ids[i], account.DiscordID)
	}
}

func TestListAll_Empty(t *testing.T) {
	accounts, err := linkdb.NewRepository(setupDB(t)).ListAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
