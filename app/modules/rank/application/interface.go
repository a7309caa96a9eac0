package rankservice

import (
	"context"

	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/modules/rank/infrastructure/faceit"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Service resolves current rank data for FACEIT accounts.
type Service interface {
	// ResolveByName looks an account up by the display name a user typed.
	ResolveByName(ctx context.Context, nickname string) (*rankdomain.RankSnapshot, error)
	// ResolveByID looks an account up by its stored stable id.
	ResolveByID(ctx context.Context, playerID sharedtypes.FaceitID) (*rankdomain.RankSnapshot, error)
}

// PlayerProvider is the FACEIT API surface the service depends on.
type PlayerProvider interface {
	PlayerByNickname(ctx context.Context, nickname string) (*faceit.Player, error)
	PlayerByID(ctx context.Context, playerID string) (*faceit.Player, error)
}

var _ PlayerProvider = (*faceit.Client)(nil)
