package linkservice

import (
	"context"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	syncservice "github.com/Black-And-White-Club/elo-bot/app/modules/sync/application"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Service orchestrates linking Discord users to FACEIT accounts.
type Service interface {
	Link(ctx context.Context, query string, discordID sharedtypes.DiscordID) (LinkResult, error)
	Unlink(ctx context.Context, discordID sharedtypes.DiscordID) (UnlinkResult, error)
	Restore(ctx context.Context) (RestoreReport, error)
	Status(ctx context.Context) (StatusReport, error)
}

// UserSyncer pushes presentation changes for one user to every guild.
type UserSyncer interface {
	SyncUser(ctx context.Context, discordID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot) (syncservice.UserReport, error)
	ClearUser(ctx context.Context, discordID sharedtypes.DiscordID) (syncservice.UserReport, error)
}

// MemberDirectory lists guilds and pages through their members.
type MemberDirectory interface {
	Guilds(ctx context.Context) ([]presentationdomain.Guild, error)
	Members(ctx context.Context, guildID sharedtypes.GuildID, after sharedtypes.DiscordID, limit int) ([]presentationdomain.Member, error)
}

// LinkOutcome is the non-error result of a link attempt.
type LinkOutcome string

const (
	LinkOutcomeLinked          LinkOutcome = "linked"
	LinkOutcomeAlreadyLinked   LinkOutcome = "already_linked"
	LinkOutcomeAccountNotFound LinkOutcome = "account_not_found"
	LinkOutcomeIneligible      LinkOutcome = "ineligible"
)

// LinkResult carries the outcome and, when the account was found, its snapshot.
type LinkResult struct {
	Outcome  LinkOutcome
	Snapshot *rankdomain.RankSnapshot
}

// UnlinkOutcome is the non-error result of an unlink attempt.
type UnlinkOutcome string

const (
	UnlinkOutcomeUnlinked  UnlinkOutcome = "unlinked"
	UnlinkOutcomeNotLinked UnlinkOutcome = "not_linked"
)

type UnlinkResult struct {
	Outcome UnlinkOutcome
}

// RestoreReport counts what a restore pass found and linked.
type RestoreReport struct {
	Total   int
	Assumed int
	Added   int
	Errors  int
}

// StatusReport describes the bot's reach.
type StatusReport struct {
	Guilds      int
	LinkedUsers int
}
