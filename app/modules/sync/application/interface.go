package syncservice

import (
	"context"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Service drives presentation reconciliation for one user or for everyone.
type Service interface {
	// SyncUser applies a freshly resolved snapshot in every guild.
	SyncUser(ctx context.Context, discordID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot) (UserReport, error)
	// ClearUser resets the nickname and strips tier roles in every guild.
	ClearUser(ctx context.Context, discordID sharedtypes.DiscordID) (UserReport, error)
	// ResyncUser resolves a linked user's current rank and applies it.
	ResyncUser(ctx context.Context, discordID sharedtypes.DiscordID) (UserReport, error)
	// Sweep reconciles every linked user once. Overlapping calls fail with ErrSweepInProgress.
	Sweep(ctx context.Context) (SweepReport, error)
	// Run sweeps on a fixed interval until ctx is cancelled.
	Run(ctx context.Context) error
}

// GuildLister lists the guilds the bot is a member of.
type GuildLister interface {
	Guilds(ctx context.Context) ([]presentationdomain.Guild, error)
}

// UserReport counts per-guild outcomes for one user.
type UserReport struct {
	Guilds  int
	Applied int
	Skipped int
	Failed  int
}

func (r *UserReport) merge(other UserReport) {
	r.Guilds += other.Guilds
	r.Applied += other.Applied
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// SweepReport summarises one pass over all linked users.
type SweepReport struct {
	Users       int
	Resolved    int
	NotFound    int
	Failed      int
	Members     UserReport
	Interrupted bool
}
