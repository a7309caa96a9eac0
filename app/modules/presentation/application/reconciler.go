package presentationservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reconciler brings a member's nickname and tier role in line with their rank.
type Reconciler struct {
	platform Platform
	catalog  *rankdomain.TierCatalog
	in       instrumentation
}

var _ PresentationReconciler = (*Reconciler)(nil)

// NewReconciler creates a Reconciler.
func NewReconciler(
	platform Platform,
	catalog *rankdomain.TierCatalog,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *Reconciler {
	if catalog == nil {
		catalog = rankdomain.DefaultCatalog()
	}
	return &Reconciler{
		platform: platform,
		catalog:  catalog,
		in:       newInstrumentation("PresentationReconciler", logger, metrics, tracer),
	}
}

// Reconcile applies the snapshot's presentation in one guild. Ineligible
// snapshots are skipped so a user's own nickname survives missing data.
//
// When the guild lacks the desired tier role the nickname is still written and
// stale tier roles are still removed; only the role assignment is skipped.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	snapshot *rankdomain.RankSnapshot,
	roles *presentationdomain.RoleMap,
) (Outcome, error) {
	desired, ok := presentationdomain.DesiredFor(snapshot, r.catalog)
	if !ok {
		r.in.logger.DebugContext(ctx, "Skipping ineligible account",
			attr.GuildID(guildID),
			attr.DiscordID(userID),
		)
		return OutcomeSkipped, nil
	}
	return r.apply(ctx, "Reconcile", guildID, userID, desired, roles)
}

// Clear resets the nickname and strips every tier role in one guild.
func (r *Reconciler) Clear(
	ctx context.Context,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	roles *presentationdomain.RoleMap,
) (Outcome, error) {
	return r.apply(ctx, "Clear", guildID, userID, presentationdomain.Cleared, roles)
}

func (r *Reconciler) apply(
	ctx context.Context,
	operationName string,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	desired presentationdomain.Desired,
	roles *presentationdomain.RoleMap,
) (Outcome, error) {
	attrs := []attribute.KeyValue{
		attribute.String("guild_id", string(guildID)),
		attribute.String("discord_id", string(userID)),
	}
	return withTelemetry(r.in, ctx, operationName, attrs, func(ctx context.Context) (Outcome, error) {
		guild, err := r.platform.Guild(ctx, guildID)
		if err != nil {
			return "", mapPlatformError("fetch guild", err)
		}
		if guild.OwnerID == userID {
			r.in.logger.InfoContext(ctx, "Skipping guild owner",
				attr.ExtractCorrelationID(ctx),
				attr.GuildID(guildID),
				attr.DiscordID(userID),
			)
			return OutcomeSkipped, nil
		}

		member, err := r.platform.Member(ctx, guildID, userID)
		if err != nil {
			if errors.Is(err, presentationdomain.ErrNotFound) {
				return OutcomeSkipped, nil
			}
			return "", mapPlatformError("fetch member", err)
		}

		var desiredRole sharedtypes.RoleID
		if desired.TierLabel != "" {
			id, ok := roles.Lookup(desired.TierLabel)
			if ok {
				desiredRole = id
			} else {
				r.in.logger.WarnContext(ctx, "Tier role missing in guild, applying nickname only",
					attr.ExtractCorrelationID(ctx),
					attr.GuildID(guildID),
					attr.DiscordID(userID),
					attr.String("role", desired.TierLabel),
				)
			}
		}

		next, removed, added := presentationdomain.PlanRoles(member.Roles, desiredRole, roles)
		if member.Nick == desired.Nickname && presentationdomain.SameRoles(member.Roles, next) {
			return OutcomeSkipped, nil
		}

		if err := r.platform.EditMember(ctx, guildID, userID, presentationdomain.MemberEdit{
			Nick:  desired.Nickname,
			Roles: next,
		}); err != nil {
			return "", mapPlatformError("edit member", err)
		}

		r.in.logger.InfoContext(ctx, "Member presentation updated",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.DiscordID(userID),
			attr.String("nickname", desired.Nickname),
			attr.Int("roles_removed", len(removed)),
			attr.Int("roles_added", len(added)),
		)
		return OutcomeApplied, nil
	})
}

func mapPlatformError(step string, err error) error {
	switch {
	case errors.Is(err, presentationdomain.ErrPermissionDenied):
		return fmt.Errorf("failed to %s: %w", step, ErrPermissionDenied)
	case errors.Is(err, presentationdomain.ErrRateLimited):
		return fmt.Errorf("failed to %s: %w", step, ErrRateLimited)
	default:
		return fmt.Errorf("failed to %s: %w", step, err)
	}
}
