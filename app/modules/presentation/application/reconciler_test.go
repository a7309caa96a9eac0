package presentationservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	testGuild = sharedtypes.GuildID("guild-1")
	testUser  = sharedtypes.DiscordID("user-1")
)

func intPtr(v int) *int { return &v }

func newTestReconciler(platform Platform) *Reconciler {
	return NewReconciler(
		platform,
		rankdomain.DefaultCatalog(),
		slog.New(slog.DiscardHandler),
		observability.NewNoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func testRoleMap() *presentationdomain.RoleMap {
	roles := presentationdomain.NewRoleMap()
	for _, tier := range rankdomain.DefaultCatalog().Tiers() {
		roles.Add(tier.Label, sharedtypes.RoleID(tier.Label))
	}
	return roles
}

func snapshot(elo, tier int) *rankdomain.RankSnapshot {
	return &rankdomain.RankSnapshot{PlayerID: "p-1", Nickname: "broky", Elo: intPtr(elo), Tier: intPtr(tier)}
}

func memberWith(nick string, roles ...sharedtypes.RoleID) func(context.Context, sharedtypes.GuildID, sharedtypes.DiscordID) (*presentationdomain.Member, error) {
	return func(_ context.Context, _ sharedtypes.GuildID, userID sharedtypes.DiscordID) (*presentationdomain.Member, error) {
		return &presentationdomain.Member{UserID: userID, Nick: nick, Roles: roles}, nil
	}
}

func TestReconcile_TierChangeSwapsOneRole(t *testing.T) {
	platform := NewFakePlatform()
	platform.MemberFunc = memberWith("(1240 ELO) broky", "member", "Level 4 (1101-1250 ELO)", "vip")

	outcome, err := newTestReconciler(platform).Reconcile(context.Background(), testGuild, testUser, snapshot(1260, 5), testRoleMap())
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	require.Len(t, platform.Edits, 1)
	edit := platform.Edits[0]
	assert.Equal(t, "(1260 ELO) broky", edit.Nick)
	assert.ElementsMatch(t, []sharedtypes.RoleID{"member", "vip", "Level 5 (1251-1400 ELO)"}, edit.Roles)
	assert.NotContains(t, edit.Roles, sharedtypes.RoleID("Level 4 (1101-1250 ELO)"))
}

func TestReconcile_SkipCases(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*FakePlatform)
		snapshot  *rankdomain.RankSnapshot
		wantTrace []string
	}{
		{
			name: "guild owner is never renamed",
			setup: func(f *FakePlatform) {
				f.GuildFunc = func(_ context.Context, id sharedtypes.GuildID) (*presentationdomain.Guild, error) {
					return &presentationdomain.Guild{ID: id, OwnerID: testUser}, nil
				}
			},
			snapshot:  snapshot(1500, 6),
			wantTrace: []string{"Guild"},
		},
		{
			name:      "member absent from guild",
			setup:     func(*FakePlatform) {},
			snapshot:  snapshot(1500, 6),
			wantTrace: []string{"Guild", "Member"},
		},
		{
			name:      "ineligible snapshot leaves member untouched",
			setup:     func(*FakePlatform) {},
			snapshot:  &rankdomain.RankSnapshot{PlayerID: "p-1", Nickname: "broky"},
			wantTrace: []string{},
		},
		{
			name: "already in sync",
			setup: func(f *FakePlatform) {
				f.MemberFunc = memberWith("(1500 ELO) broky", "Level 6 (1401-1550 ELO)", "member")
			},
			snapshot:  snapshot(1500, 6),
			wantTrace: []string{"Guild", "Member"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := NewFakePlatform()
			tt.setup(platform)

			outcome, err := newTestReconciler(platform).Reconcile(context.Background(), testGuild, testUser, tt.snapshot, testRoleMap())
			require.NoError(t, err)
			assert.Equal(t, OutcomeSkipped, outcome)
			assert.Empty(t, platform.Edits)
			assert.Equal(t, tt.wantTrace, platform.Trace())
		})
	}
}

func TestReconcile_MissingTierRoleStillSetsNickname(t *testing.T) {
	platform := NewFakePlatform()
	platform.MemberFunc = memberWith("old nick", "member", "Level 1 (1-800 ELO)")

	roles := presentationdomain.NewRoleMap()
	roles.Add("Level 1 (1-800 ELO)", "Level 1 (1-800 ELO)")

	outcome, err := newTestReconciler(platform).Reconcile(context.Background(), testGuild, testUser, snapshot(2100, 10), roles)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	require.Len(t, platform.Edits, 1)
	assert.Equal(t, "(2100 ELO) broky", platform.Edits[0].Nick)
	assert.Equal(t, []sharedtypes.RoleID{"member"}, platform.Edits[0].Roles)
}

func TestReconcile_EditFailures(t *testing.T) {
	tests := []struct {
		name    string
		editErr error
		wantErr error
	}{
		{name: "permission denied", editErr: presentationdomain.ErrPermissionDenied, wantErr: ErrPermissionDenied},
		{name: "rate limited", editErr: presentationdomain.ErrRateLimited, wantErr: ErrRateLimited},
		{name: "other", editErr: errors.New("socket closed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := NewFakePlatform()
			platform.MemberFunc = memberWith("")
			platform.EditMemberFunc = func(context.Context, sharedtypes.GuildID, sharedtypes.DiscordID, presentationdomain.MemberEdit) error {
				return tt.editErr
			}

			_, err := newTestReconciler(platform).Reconcile(context.Background(), testGuild, testUser, snapshot(900, 2), testRoleMap())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.editErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClear(t *testing.T) {
	platform := NewFakePlatform()
	platform.MemberFunc = memberWith("(900 ELO) broky", "Level 2 (801-950 ELO)", "member")

	outcome, err := newTestReconciler(platform).Clear(context.Background(), testGuild, testUser, testRoleMap())
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	require.Len(t, platform.Edits, 1)
	assert.Equal(t, "", platform.Edits[0].Nick)
	assert.Equal(t, []sharedtypes.RoleID{"member"}, platform.Edits[0].Roles)
}

func TestClear_NothingToDo(t *testing.T) {
	platform := NewFakePlatform()
	platform.MemberFunc = memberWith("", "member")

	outcome, err := newTestReconciler(platform).Clear(context.Background(), testGuild, testUser, testRoleMap())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, platform.Edits)
}
