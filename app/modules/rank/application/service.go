package rankservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/modules/rank/infrastructure/faceit"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/Black-And-White-Club/elo-bot/app/shared/results"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RankService"

// RankService implements the Service interface.
type RankService struct {
	provider PlayerProvider
	catalog  *rankdomain.TierCatalog
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer

	maxTries        uint
	initialInterval time.Duration
}

// Option tunes retry behaviour.
type Option func(*RankService)

// WithRetry sets how many attempts a transient failure gets and the first backoff interval.
func WithRetry(maxTries uint, initialInterval time.Duration) Option {
	return func(s *RankService) {
		s.maxTries = maxTries
		s.initialInterval = initialInterval
	}
}

// NewRankService creates a new RankService.
func NewRankService(
	provider PlayerProvider,
	catalog *rankdomain.TierCatalog,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *RankService {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = rankdomain.DefaultCatalog()
	}
	s := &RankService{
		provider:        provider,
		catalog:         catalog,
		logger:          logger,
		metrics:         metrics,
		tracer:          tracer,
		maxTries:        3,
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveByName resolves an account by display name.
func (s *RankService) ResolveByName(ctx context.Context, nickname string) (*rankdomain.RankSnapshot, error) {
	return s.resolve(ctx, "ResolveByName", nickname, func(ctx context.Context) (*faceit.Player, error) {
		return s.provider.PlayerByNickname(ctx, nickname)
	})
}

// ResolveByID resolves an account by stable player id.
func (s *RankService) ResolveByID(ctx context.Context, playerID sharedtypes.FaceitID) (*rankdomain.RankSnapshot, error) {
	return s.resolve(ctx, "ResolveByID", string(playerID), func(ctx context.Context) (*faceit.Player, error) {
		return s.provider.PlayerByID(ctx, string(playerID))
	})
}

func (s *RankService) resolve(
	ctx context.Context,
	operationName string,
	identifier string,
	fetch func(ctx context.Context) (*faceit.Player, error),
) (*rankdomain.RankSnapshot, error) {
	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[*rankdomain.RankSnapshot, error], error) {
		player, err := s.fetchWithRetry(ctx, fetch)
		if err != nil {
			if errors.Is(err, faceit.ErrNotFound) {
				return results.FailureResult[*rankdomain.RankSnapshot, error](ErrAccountNotFound), nil
			}
			return results.OperationResult[*rankdomain.RankSnapshot, error]{}, fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return results.SuccessResult[*rankdomain.RankSnapshot, error](s.toSnapshot(player)), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *RankService) fetchWithRetry(ctx context.Context, fetch func(ctx context.Context) (*faceit.Player, error)) (*faceit.Player, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval

	return backoff.Retry(ctx, func() (*faceit.Player, error) {
		player, err := fetch(ctx)
		if errors.Is(err, faceit.ErrNotFound) {
			return nil, backoff.Permanent(err)
		}
		return player, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxTries))
}

// toSnapshot prefers the provider's skill level and falls back to the Elo bands.
// Without an Elo the account is ineligible whatever the skill level says.
func (s *RankService) toSnapshot(player *faceit.Player) *rankdomain.RankSnapshot {
	snapshot := &rankdomain.RankSnapshot{
		PlayerID: sharedtypes.FaceitID(player.ID),
		Nickname: player.Nickname,
	}
	if player.Elo == nil {
		return snapshot
	}

	elo := *player.Elo
	tier := s.catalog.TierForElo(elo)
	if player.SkillLevel != nil {
		if _, ok := s.catalog.ByIndex(*player.SkillLevel); ok {
			tier = *player.SkillLevel
		}
	}
	snapshot.Elo = &elo
	snapshot.Tier = &tier
	return snapshot
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RankService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.WarnContext(ctx, "Rank lookup failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.InfoContext(ctx, "Rank lookup found no account",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}
