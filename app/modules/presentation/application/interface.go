package presentationservice

import (
	"context"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Platform is the chat platform capability set the presentation layer needs.
// Implementations map failures onto presentationdomain.ErrNotFound,
// ErrPermissionDenied and ErrRateLimited.
type Platform interface {
	Guilds(ctx context.Context) ([]presentationdomain.Guild, error)
	Guild(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.Guild, error)
	Roles(ctx context.Context, guildID sharedtypes.GuildID) ([]presentationdomain.Role, error)
	CreateRole(ctx context.Context, guildID sharedtypes.GuildID, spec presentationdomain.RoleSpec) (*presentationdomain.Role, error)
	Member(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*presentationdomain.Member, error)
	Members(ctx context.Context, guildID sharedtypes.GuildID, after sharedtypes.DiscordID, limit int) ([]presentationdomain.Member, error)
	EditMember(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, edit presentationdomain.MemberEdit) error
	LeaveGuild(ctx context.Context, guildID sharedtypes.GuildID) error
}

// RoleProvisioner makes sure tier roles exist in a guild.
type RoleProvisioner interface {
	// EnsureRoles creates missing tier roles and returns the guild's role map.
	EnsureRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error)
	// LookupRoles returns the tier roles already present without creating any.
	LookupRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error)
}

// PresentationReconciler applies a member's desired nickname and tier role.
type PresentationReconciler interface {
	Reconcile(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot, roles *presentationdomain.RoleMap) (Outcome, error)
	Clear(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roles *presentationdomain.RoleMap) (Outcome, error)
}

// Outcome is the result of a successful reconciliation.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)
