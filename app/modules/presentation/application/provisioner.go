package presentationservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Provisioner creates the tier roles a guild is missing. Concurrent calls for
// the same guild share one provisioning run.
type Provisioner struct {
	platform Platform
	catalog  *rankdomain.TierCatalog
	limiter  *rate.Limiter
	flights  singleflight.Group
	in       instrumentation
}

var _ RoleProvisioner = (*Provisioner)(nil)

// NewProvisioner creates a Provisioner that spaces role creations by at least createDelay.
func NewProvisioner(
	platform Platform,
	catalog *rankdomain.TierCatalog,
	createDelay time.Duration,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *Provisioner {
	if catalog == nil {
		catalog = rankdomain.DefaultCatalog()
	}
	limit := rate.Inf
	if createDelay > 0 {
		limit = rate.Every(createDelay)
	}
	return &Provisioner{
		platform: platform,
		catalog:  catalog,
		limiter:  rate.NewLimiter(limit, 1),
		in:       newInstrumentation("RoleProvisioner", logger, metrics, tracer),
	}
}

// EnsureRoles looks up each tier role by exact label and creates the missing
// ones in ascending tier order. The first failed creation aborts the guild;
// a later call picks up where this one stopped.
func (p *Provisioner) EnsureRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error) {
	return withTelemetry(p.in, ctx, "EnsureRoles", []attribute.KeyValue{attribute.String("guild_id", string(guildID))},
		func(ctx context.Context) (*presentationdomain.RoleMap, error) {
			v, err, shared := p.flights.Do(string(guildID), func() (any, error) {
				return p.provision(ctx, guildID)
			})
			if err != nil {
				return nil, err
			}
			if shared {
				p.in.logger.DebugContext(ctx, "Joined in-flight role provisioning",
					attr.ExtractCorrelationID(ctx),
					attr.GuildID(guildID),
				)
			}
			return v.(*presentationdomain.RoleMap), nil
		})
}

func (p *Provisioner) provision(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error) {
	roles, err := p.LookupRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, tier := range p.catalog.Tiers() {
		if _, ok := roles.Lookup(tier.Label); ok {
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for role creation slot: %w", err)
		}

		role, err := p.platform.CreateRole(ctx, guildID, presentationdomain.RoleSpec{
			Name:        tier.Label,
			Color:       tier.Color,
			Hoist:       true,
			Mentionable: true,
		})
		if err != nil {
			p.in.logger.ErrorContext(ctx, "Failed to create tier role",
				attr.ExtractCorrelationID(ctx),
				attr.GuildID(guildID),
				attr.String("role", tier.Label),
				attr.Error(err),
			)
			return nil, fmt.Errorf("failed to create role %q: %w", tier.Label, err)
		}
		roles.Add(tier.Label, role.ID)
		created++
	}

	if created > 0 {
		p.in.logger.InfoContext(ctx, "Provisioned tier roles",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.Int("created", created),
		)
	}
	return roles, nil
}

// LookupRoles collects the guild's existing tier roles.
func (p *Provisioner) LookupRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error) {
	existing, err := p.platform.Roles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	roles := presentationdomain.NewRoleMap()
	for _, role := range existing {
		if p.catalog.IsTierLabel(role.Name) {
			roles.Add(role.Name, role.ID)
		}
	}
	return roles, nil
}
