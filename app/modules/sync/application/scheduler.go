package syncservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const serviceName = "SyncScheduler"

// Config controls sweep cadence and remote call pacing.
type Config struct {
	SweepInterval time.Duration
	CallDelay     time.Duration
}

// Scheduler implements the Service interface.
type Scheduler struct {
	repo        linkdb.Repository
	db          bun.IDB
	ranks       rankservice.Service
	guilds      GuildLister
	provisioner presentationservice.RoleProvisioner
	reconciler  presentationservice.PresentationReconciler

	interval time.Duration
	limiter  *rate.Limiter
	sweeping atomic.Bool

	logger       *slog.Logger
	metrics      observability.OperationMetrics
	sweepMetrics observability.SweepMetrics
	tracer       trace.Tracer
}

var _ Service = (*Scheduler)(nil)

// NewScheduler creates a new Scheduler.
func NewScheduler(
	repo linkdb.Repository,
	db bun.IDB,
	ranks rankservice.Service,
	guilds GuildLister,
	provisioner presentationservice.RoleProvisioner,
	reconciler presentationservice.PresentationReconciler,
	cfg Config,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	sweepMetrics observability.SweepMetrics,
	tracer trace.Tracer,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if sweepMetrics == nil {
		sweepMetrics = observability.NewNoopSweepMetrics()
	}
	limit := rate.Inf
	if cfg.CallDelay > 0 {
		limit = rate.Every(cfg.CallDelay)
	}
	return &Scheduler{
		repo:         repo,
		db:           db,
		ranks:        ranks,
		guilds:       guilds,
		provisioner:  provisioner,
		reconciler:   reconciler,
		interval:     cfg.SweepInterval,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger,
		metrics:      metrics,
		sweepMetrics: sweepMetrics,
		tracer:       tracer,
	}
}

// roleSource yields the role map to use for a guild.
type roleSource func(ctx context.Context, guildID sharedtypes.GuildID) *presentationdomain.RoleMap

// guildAction reconciles one member in one guild.
type guildAction func(ctx context.Context, guildID sharedtypes.GuildID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error)

// SyncUser applies the snapshot in every guild, creating missing tier roles first.
func (s *Scheduler) SyncUser(ctx context.Context, discordID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot) (UserReport, error) {
	return withTelemetry(s, ctx, "SyncUser", discordID, func(ctx context.Context) (UserReport, error) {
		guilds, err := s.guilds.Guilds(ctx)
		if err != nil {
			return UserReport{}, fmt.Errorf("failed to list guilds: %w", err)
		}
		return s.forEachGuild(ctx, discordID, guilds, s.ensuredRoles, func(ctx context.Context, guildID sharedtypes.GuildID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error) {
			return s.reconciler.Reconcile(ctx, guildID, discordID, snapshot, roles)
		})
	})
}

// ClearUser resets the user's presentation in every guild. No roles are created.
func (s *Scheduler) ClearUser(ctx context.Context, discordID sharedtypes.DiscordID) (UserReport, error) {
	return withTelemetry(s, ctx, "ClearUser", discordID, func(ctx context.Context) (UserReport, error) {
		guilds, err := s.guilds.Guilds(ctx)
		if err != nil {
			return UserReport{}, fmt.Errorf("failed to list guilds: %w", err)
		}
		return s.forEachGuild(ctx, discordID, guilds, s.existingRoles, func(ctx context.Context, guildID sharedtypes.GuildID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error) {
			return s.reconciler.Clear(ctx, guildID, discordID, roles)
		})
	})
}

// ResyncUser looks up the stored link, resolves it by id and applies the result.
func (s *Scheduler) ResyncUser(ctx context.Context, discordID sharedtypes.DiscordID) (UserReport, error) {
	account, err := s.repo.Get(ctx, s.db, discordID)
	if err != nil {
		if errors.Is(err, linkdb.ErrNotFound) {
			return UserReport{}, ErrNotLinked
		}
		return UserReport{}, fmt.Errorf("failed to load link: %w", err)
	}

	snapshot, err := s.ranks.ResolveByID(ctx, account.FaceitID)
	if err != nil {
		return UserReport{}, fmt.Errorf("failed to resolve rank: %w", err)
	}
	return s.SyncUser(ctx, discordID, snapshot)
}

// forEachGuild runs action in every guild sequentially. Per-guild failures are
// logged and counted; only cancellation stops the loop early.
func (s *Scheduler) forEachGuild(
	ctx context.Context,
	discordID sharedtypes.DiscordID,
	guilds []presentationdomain.Guild,
	roles roleSource,
	action guildAction,
) (UserReport, error) {
	var report UserReport
	for _, guild := range guilds {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}
		report.Guilds++

		outcome, err := action(ctx, guild.ID, roles(ctx, guild.ID))
		if err != nil {
			report.Failed++
			level := slog.LevelError
			if presentationservice.IsPermissionDenied(err) {
				level = slog.LevelWarn
			}
			s.logger.Log(ctx, level, "Failed to reconcile member",
				attr.ExtractCorrelationID(ctx),
				attr.GuildID(guild.ID),
				attr.DiscordID(discordID),
				attr.Error(err),
			)
			continue
		}

		switch outcome {
		case presentationservice.OutcomeApplied:
			report.Applied++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// ensuredRoles provisions tier roles and falls back to whatever already exists
// when provisioning fails, so the nickname can still be written.
func (s *Scheduler) ensuredRoles(ctx context.Context, guildID sharedtypes.GuildID) *presentationdomain.RoleMap {
	roles, err := s.provisioner.EnsureRoles(ctx, guildID)
	if err == nil {
		return roles
	}
	s.logger.WarnContext(ctx, "Failed to provision tier roles",
		attr.ExtractCorrelationID(ctx),
		attr.GuildID(guildID),
		attr.Error(err),
	)
	return s.existingRoles(ctx, guildID)
}

func (s *Scheduler) existingRoles(ctx context.Context, guildID sharedtypes.GuildID) *presentationdomain.RoleMap {
	roles, err := s.provisioner.LookupRoles(ctx, guildID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read tier roles",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.Error(err),
		)
		return nil
	}
	return roles
}

// withTelemetry wraps a scheduler operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *Scheduler,
	ctx context.Context,
	operationName string,
	discordID sharedtypes.DiscordID,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("discord_id", string(discordID)),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
		return result, err
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}
