package syncservice

import (
	"context"
	"sync"

	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// FakeRanks is a rankservice.Service with overridable behaviour.
type FakeRanks struct {
	ResolveByNameFunc func(ctx context.Context, nickname string) (*rankdomain.RankSnapshot, error)
	ResolveByIDFunc   func(ctx context.Context, playerID sharedtypes.FaceitID) (*rankdomain.RankSnapshot, error)
}

var _ rankservice.Service = (*FakeRanks)(nil)

func (f *FakeRanks) ResolveByName(ctx context.Context, nickname string) (*rankdomain.RankSnapshot, error) {
	if f.ResolveByNameFunc != nil {
		return f.ResolveByNameFunc(ctx, nickname)
	}
	return nil, rankservice.ErrAccountNotFound
}

func (f *FakeRanks) ResolveByID(ctx context.Context, playerID sharedtypes.FaceitID) (*rankdomain.RankSnapshot, error) {
	if f.ResolveByIDFunc != nil {
		return f.ResolveByIDFunc(ctx, playerID)
	}
	return nil, rankservice.ErrAccountNotFound
}

// FakeGuilds returns a fixed guild list.
type FakeGuilds struct {
	List []presentationdomain.Guild
	Err  error
}

func (f *FakeGuilds) Guilds(ctx context.Context) ([]presentationdomain.Guild, error) {
	return f.List, f.Err
}

// FakeProvisioner records role map requests.
type FakeProvisioner struct {
	mu    sync.Mutex
	trace []string

	EnsureRolesFunc func(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error)
	LookupRolesFunc func(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error)
}

var _ presentationservice.RoleProvisioner = (*FakeProvisioner)(nil)

func (f *FakeProvisioner) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeProvisioner) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeProvisioner) EnsureRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error) {
	f.record("EnsureRoles:" + string(guildID))
	if f.EnsureRolesFunc != nil {
		return f.EnsureRolesFunc(ctx, guildID)
	}
	return presentationdomain.NewRoleMap(), nil
}

func (f *FakeProvisioner) LookupRoles(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.RoleMap, error) {
	f.record("LookupRoles:" + string(guildID))
	if f.LookupRolesFunc != nil {
		return f.LookupRolesFunc(ctx, guildID)
	}
	return presentationdomain.NewRoleMap(), nil
}

// FakeReconciler records which members were reconciled where.
type FakeReconciler struct {
	mu    sync.Mutex
	trace []string

	ReconcileFunc func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error)
	ClearFunc     func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error)
}

var _ presentationservice.PresentationReconciler = (*FakeReconciler)(nil)

func (f *FakeReconciler) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeReconciler) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeReconciler) Reconcile(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error) {
	f.record("Reconcile:" + string(guildID) + ":" + string(userID))
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, guildID, userID, snapshot, roles)
	}
	return presentationservice.OutcomeApplied, nil
}

func (f *FakeReconciler) Clear(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roles *presentationdomain.RoleMap) (presentationservice.Outcome, error) {
	f.record("Clear:" + string(guildID) + ":" + string(userID))
	if f.ClearFunc != nil {
		return f.ClearFunc(ctx, guildID, userID, roles)
	}
	return presentationservice.OutcomeApplied, nil
}
