package syncservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Run sweeps immediately and then once per interval after each sweep ends.
// It returns nil once ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Presentation sweep loop started",
		attr.Duration("interval", s.interval),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Presentation sweep loop stopped")
			return nil
		case <-timer.C:
		}

		report, err := s.Sweep(ctx)
		switch {
		case errors.Is(err, ErrSweepInProgress):
			s.logger.DebugContext(ctx, "Skipping tick, sweep still running")
		case err != nil && ctx.Err() == nil:
			s.logger.ErrorContext(ctx, "Presentation sweep failed", attr.Error(err))
		default:
			s.logger.InfoContext(ctx, "Presentation sweep finished",
				attr.Int("users", report.Users),
				attr.Int("resolved", report.Resolved),
				attr.Int("not_found", report.NotFound),
				attr.Int("failed", report.Failed),
				attr.Int("applied", report.Members.Applied),
				attr.Int("member_errors", report.Members.Failed),
				attr.Bool("interrupted", report.Interrupted),
			)
		}

		if s.interval <= 0 {
			return nil
		}
		timer.Reset(s.interval)
	}
}

// Sweep reconciles every linked user in every guild. A user whose rank cannot
// be resolved is logged and skipped. Cancellation stops new users from starting;
// the user in flight finishes on a context detached from ctx.
func (s *Scheduler) Sweep(ctx context.Context) (SweepReport, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.sweepMetrics.RecordSweepRejected()
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	return withTelemetry(s, ctx, "Sweep", "", func(ctx context.Context) (SweepReport, error) {
		start := time.Now()
		var report SweepReport

		accounts, err := s.repo.ListAll(ctx, s.db)
		if err != nil {
			return report, fmt.Errorf("failed to list links: %w", err)
		}
		guilds, err := s.guilds.Guilds(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to list guilds: %w", err)
		}

		cache := newRoleCache(s.ensuredRoles)
		for _, account := range accounts {
			if ctx.Err() != nil {
				report.Interrupted = true
				break
			}
			s.sweepUser(context.WithoutCancel(ctx), account, guilds, cache, &report)
		}

		s.sweepMetrics.RecordSweep(report.Users, report.Failed, time.Since(start))
		if report.Interrupted {
			return report, ctx.Err()
		}
		return report, nil
	})
}

func (s *Scheduler) sweepUser(
	ctx context.Context,
	account linkdb.LinkedAccount,
	guilds []presentationdomain.Guild,
	cache *roleCache,
	report *SweepReport,
) {
	report.Users++

	if err := s.limiter.Wait(ctx); err != nil {
		report.Failed++
		return
	}
	snapshot, err := s.ranks.ResolveByID(ctx, account.FaceitID)
	if err != nil {
		if errors.Is(err, rankservice.ErrAccountNotFound) {
			report.NotFound++
			s.logger.InfoContext(ctx, "Linked account no longer exists upstream",
				attr.DiscordID(account.DiscordID),
				attr.FaceitID(account.FaceitID),
			)
			return
		}
		report.Failed++
		s.logger.ErrorContext(ctx, "Failed to resolve rank during sweep",
			attr.DiscordID(account.DiscordID),
			attr.FaceitID(account.FaceitID),
			attr.Error(err),
		)
		return
	}
	report.Resolved++

	members, err := s.forEachGuild(ctx, account.DiscordID, guilds, cache.get, func(ctx context.Context, guildID sharedtypes.GuildID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error) {
		return s.reconciler.Reconcile(ctx, guildID, account.DiscordID, snapshot, roles)
	})
	report.Members.merge(members)
	if err != nil {
		s.logger.WarnContext(ctx, "Sweep stopped mid-user",
			attr.DiscordID(account.DiscordID),
			attr.Error(err),
		)
	}
}

// roleCache memoises role maps for the lifetime of one sweep. A failed lookup
// is not cached, so the next user in that guild tries again.
type roleCache struct {
	load  roleSource
	roles map[sharedtypes.GuildID]*presentationdomain.RoleMap
}

func newRoleCache(load roleSource) *roleCache {
	return &roleCache{load: load, roles: make(map[sharedtypes.GuildID]*presentationdomain.RoleMap)}
}

func (c *roleCache) get(ctx context.Context, guildID sharedtypes.GuildID) *presentationdomain.RoleMap {
	if roles, ok := c.roles[guildID]; ok {
		return roles
	}
	roles := c.load(ctx, guildID)
	if roles != nil {
		c.roles[guildID] = roles
	}
	return roles
}
