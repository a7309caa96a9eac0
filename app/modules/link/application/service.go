package linkservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/Black-And-White-Club/elo-bot/app/shared/results"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "LinkService"

	// memberPageSize is the largest page the member listing endpoint returns.
	memberPageSize = 1000
)

// LinkService implements the Service interface.
type LinkService struct {
	repo      linkdb.Repository
	db        bun.IDB
	ranks     rankservice.Service
	syncer    UserSyncer
	directory MemberDirectory
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
}

var _ Service = (*LinkService)(nil)

// NewLinkService creates a new LinkService.
func NewLinkService(
	repo linkdb.Repository,
	db bun.IDB,
	ranks rankservice.Service,
	syncer UserSyncer,
	directory MemberDirectory,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &LinkService{
		repo:      repo,
		db:        db,
		ranks:     ranks,
		syncer:    syncer,
		directory: directory,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
	}
}

// Link resolves query to a FACEIT account and links it to discordID. After a
// successful insert the user's presentation is pushed to every guild; failures
// there are logged and never undo the link.
func (s *LinkService) Link(ctx context.Context, query string, discordID sharedtypes.DiscordID) (LinkResult, error) {
	result, err := withTelemetry(s, ctx, "Link", discordID, func(ctx context.Context) (results.OperationResult[LinkResult, LinkResult], error) {
		res, err := s.link(ctx, query, discordID)
		if err != nil {
			return results.OperationResult[LinkResult, LinkResult]{}, err
		}
		if res.Outcome != LinkOutcomeLinked {
			return results.FailureResult[LinkResult, LinkResult](res), nil
		}

		if _, err := s.syncer.SyncUser(ctx, discordID, res.Snapshot); err != nil {
			s.logger.WarnContext(ctx, "Linked user but presentation sync failed",
				attr.ExtractCorrelationID(ctx),
				attr.DiscordID(discordID),
				attr.Error(err),
			)
		}
		return results.SuccessResult[LinkResult, LinkResult](res), nil
	})
	if err != nil {
		return LinkResult{}, err
	}
	if result.IsFailure() {
		return *result.Failure, nil
	}
	return *result.Success, nil
}

// link performs the lookup and insert without touching presentation.
func (s *LinkService) link(ctx context.Context, query string, discordID sharedtypes.DiscordID) (LinkResult, error) {
	snapshot, err := s.ranks.ResolveByName(ctx, query)
	if err != nil {
		if errors.Is(err, rankservice.ErrAccountNotFound) {
			return LinkResult{Outcome: LinkOutcomeAccountNotFound}, nil
		}
		return LinkResult{}, fmt.Errorf("failed to resolve account: %w", err)
	}

	exists, err := s.repo.Exists(ctx, s.db, discordID)
	if err != nil {
		return LinkResult{}, fmt.Errorf("failed to check existing link: %w", err)
	}
	if exists {
		return LinkResult{Outcome: LinkOutcomeAlreadyLinked, Snapshot: snapshot}, nil
	}

	if !snapshot.Eligible() {
		return LinkResult{Outcome: LinkOutcomeIneligible, Snapshot: snapshot}, nil
	}

	inserted, err := s.repo.Insert(ctx, s.db, &linkdb.LinkedAccount{
		DiscordID: discordID,
		FaceitID:  snapshot.PlayerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return LinkResult{}, fmt.Errorf("failed to store link: %w", err)
	}
	if !inserted {
		return LinkResult{Outcome: LinkOutcomeAlreadyLinked, Snapshot: snapshot}, nil
	}

	s.logger.InfoContext(ctx, "Account linked",
		attr.ExtractCorrelationID(ctx),
		attr.DiscordID(discordID),
		attr.FaceitID(snapshot.PlayerID),
	)
	return LinkResult{Outcome: LinkOutcomeLinked, Snapshot: snapshot}, nil
}

// Unlink deletes the user's link and clears their presentation everywhere.
func (s *LinkService) Unlink(ctx context.Context, discordID sharedtypes.DiscordID) (UnlinkResult, error) {
	return withPlainTelemetry(s, ctx, "Unlink", discordID, func(ctx context.Context) (UnlinkResult, error) {
		exists, err := s.repo.Exists(ctx, s.db, discordID)
		if err != nil {
			return UnlinkResult{}, fmt.Errorf("failed to check existing link: %w", err)
		}
		if !exists {
			return UnlinkResult{Outcome: UnlinkOutcomeNotLinked}, nil
		}

		deleted, err := s.repo.Delete(ctx, s.db, discordID)
		if err != nil {
			return UnlinkResult{}, fmt.Errorf("failed to delete link: %w", err)
		}
		if !deleted {
			return UnlinkResult{Outcome: UnlinkOutcomeNotLinked}, nil
		}

		if _, err := s.syncer.ClearUser(ctx, discordID); err != nil {
			s.logger.WarnContext(ctx, "Unlinked user but presentation reset failed",
				attr.ExtractCorrelationID(ctx),
				attr.DiscordID(discordID),
				attr.Error(err),
			)
		}
		return UnlinkResult{Outcome: UnlinkOutcomeUnlinked}, nil
	})
}

// Status reports how many guilds the bot serves and how many users are linked.
func (s *LinkService) Status(ctx context.Context) (StatusReport, error) {
	return withPlainTelemetry(s, ctx, "Status", "", func(ctx context.Context) (StatusReport, error) {
		guilds, err := s.directory.Guilds(ctx)
		if err != nil {
			return StatusReport{}, fmt.Errorf("failed to list guilds: %w", err)
		}
		count, err := s.repo.Count(ctx, s.db)
		if err != nil {
			return StatusReport{}, fmt.Errorf("failed to count links: %w", err)
		}
		return StatusReport{Guilds: len(guilds), LinkedUsers: count}, nil
	})
}

// Restore rebuilds links from nicknames the bot wrote earlier. Every member of
// every guild is counted; members whose nickname carries the Elo prefix are
// relinked by the trailing name and synced across guilds like a fresh link.
func (s *LinkService) Restore(ctx context.Context) (RestoreReport, error) {
	return withPlainTelemetry(s, ctx, "Restore", "", func(ctx context.Context) (RestoreReport, error) {
		var report RestoreReport

		guilds, err := s.directory.Guilds(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to list guilds: %w", err)
		}

		for _, guild := range guilds {
			if err := s.restoreGuild(ctx, guild.ID, &report); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				report.Errors++
				s.logger.ErrorContext(ctx, "Failed to page guild members",
					attr.ExtractCorrelationID(ctx),
					attr.GuildID(guild.ID),
					attr.Error(err),
				)
			}
		}

		s.logger.InfoContext(ctx, "Restore finished",
			attr.ExtractCorrelationID(ctx),
			attr.Int("total", report.Total),
			attr.Int("assumed", report.Assumed),
			attr.Int("added", report.Added),
			attr.Int("errors", report.Errors),
		)
		return report, nil
	})
}

func (s *LinkService) restoreGuild(ctx context.Context, guildID sharedtypes.GuildID, report *RestoreReport) error {
	var after sharedtypes.DiscordID
	for {
		members, err := s.directory.Members(ctx, guildID, after, memberPageSize)
		if err != nil {
			return err
		}
		for _, member := range members {
			s.restoreMember(ctx, member, report)
		}
		if len(members) < memberPageSize {
			return nil
		}
		after = members[len(members)-1].UserID
	}
}

func (s *LinkService) restoreMember(ctx context.Context, member presentationdomain.Member, report *RestoreReport) {
	report.Total++

	name, matched, ok := presentationdomain.ParseNickname(member.Nick)
	if !matched {
		return
	}
	report.Assumed++
	if !ok {
		report.Errors++
		s.logger.WarnContext(ctx, "Nickname does not end with the recovered name",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(member.UserID),
			attr.String("nickname", member.Nick),
		)
		return
	}

	res, err := s.link(ctx, name, member.UserID)
	if err != nil {
		report.Errors++
		s.logger.WarnContext(ctx, "Failed to restore link",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(member.UserID),
			attr.String("nickname", name),
			attr.Error(err),
		)
		return
	}
	if res.Outcome != LinkOutcomeLinked {
		return
	}
	report.Added++

	if _, err := s.syncer.SyncUser(ctx, member.UserID, res.Snapshot); err != nil {
		s.logger.WarnContext(ctx, "Restored link but presentation sync failed",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(member.UserID),
			attr.Error(err),
		)
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LinkService,
	ctx context.Context,
	operationName string,
	discordID sharedtypes.DiscordID,
	op func(ctx context.Context) (results.OperationResult[S, F], error),
) (result results.OperationResult[S, F], err error) {
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
				attr.DiscordID(discordID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s operation failed: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Error in "+operationName,
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(discordID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// withPlainTelemetry adapts withTelemetry for operations that have no failure payload.
func withPlainTelemetry[T any](
	s *LinkService,
	ctx context.Context,
	operationName string,
	discordID sharedtypes.DiscordID,
	op func(ctx context.Context) (T, error),
) (T, error) {
	result, err := withTelemetry(s, ctx, operationName, discordID, func(ctx context.Context) (results.OperationResult[T, error], error) {
		v, err := op(ctx)
		if err != nil {
			return results.OperationResult[T, error]{}, err
		}
		return results.SuccessResult[T, error](v), nil
	})
	if err != nil || result.Success == nil {
		var zero T
		return zero, err
	}
	return *result.Success, nil
}
