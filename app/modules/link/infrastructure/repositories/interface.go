package linkdb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository defines the contract for linked account persistence.
// Every method is atomic on its own; no cross-call transaction is implied.
type Repository interface {
	// Exists reports whether the Discord user has a link.
	Exists(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (bool, error)

	// Get returns the link for a Discord user or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (*LinkedAccount, error)

	// Insert stores a link. It returns false when the user is already linked.
	Insert(ctx context.Context, db bun.IDB, account *LinkedAccount) (bool, error)

	// Delete removes a link. It returns false when there was nothing to remove.
	Delete(ctx context.Context, db bun.IDB, discordID sharedtypes.DiscordID) (bool, error)

	// Count returns the number of linked users.
	Count(ctx context.Context, db bun.IDB) (int, error)

	// ListAll returns every link, oldest first.
	ListAll(ctx context.Context, db bun.IDB) ([]LinkedAccount, error)
}
