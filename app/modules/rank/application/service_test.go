package rankservice

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/modules/rank/infrastructure/faceit"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func intPtr(v int) *int { return &v }

func newTestService(provider PlayerProvider) *RankService {
	return NewRankService(
		provider,
		nil,
		slog.New(slog.DiscardHandler),
		observability.NewNoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		WithRetry(3, time.Millisecond),
	)
}

func TestResolveByName(t *testing.T) {
	tests := []struct {
		name      string
		player    *faceit.Player
		err       error
		wantErr   error
		wantElo   *int
		wantTier  *int
		wantCalls int
	}{
		{
			name:      "uses provider skill level",
			player:    &faceit.Player{ID: "p-1", Nickname: "zywoo", Elo: intPtr(1500), SkillLevel: intPtr(6)},
			wantElo:   intPtr(1500),
			wantTier:  intPtr(6),
			wantCalls: 1,
		},
		{
			name:      "falls back to elo bands when skill level is out of range",
			player:    &faceit.Player{ID: "p-1", Nickname: "zywoo", Elo: intPtr(2001), SkillLevel: intPtr(0)},
			wantElo:   intPtr(2001),
			wantTier:  intPtr(10),
			wantCalls: 1,
		},
		{
			name:      "falls back to elo bands when skill level is absent",
			player:    &faceit.Player{ID: "p-1", Nickname: "zywoo", Elo: intPtr(800)},
			wantElo:   intPtr(800),
			wantTier:  intPtr(1),
			wantCalls: 1,
		},
		{
			name:      "missing game data is ineligible, not an error",
			player:    &faceit.Player{ID: "p-1", Nickname: "newbie", SkillLevel: intPtr(3)},
			wantCalls: 1,
		},
		{
			name:      "not found is not retried",
			err:       faceit.ErrNotFound,
			wantErr:   ErrAccountNotFound,
			wantCalls: 1,
		},
		{
			name:      "transient failure retried then surfaced",
			err:       fmt.Errorf("%w: status 503", faceit.ErrUnavailable),
			wantErr:   ErrTransient,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewFakePlayerProvider()
			provider.PlayerByNicknameFunc = func(_ context.Context, nickname string) (*faceit.Player, error) {
				assert.Equal(t, "zywoo", nickname)
				return tt.player, tt.err
			}

			svc := newTestService(provider)
			snapshot, err := svc.ResolveByName(context.Background(), "zywoo")

			assert.Len(t, provider.Trace(), tt.wantCalls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, snapshot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sharedtypes.FaceitID("p-1"), snapshot.PlayerID)
			assert.Equal(t, tt.player.Nickname, snapshot.Nickname)
			assert.Equal(t, tt.wantElo, snapshot.Elo)
			assert.Equal(t, tt.wantTier, snapshot.Tier)
		})
	}
}

func TestResolveByID_RecoversAfterTransientFailure(t *testing.T) {
	provider := NewFakePlayerProvider()
	calls := 0
	provider.PlayerByIDFunc = func(_ context.Context, playerID string) (*faceit.Player, error) {
		calls++
		if calls == 1 {
			return nil, faceit.ErrUnavailable
		}
		return &faceit.Player{ID: playerID, Nickname: "ropz", Elo: intPtr(1900), SkillLevel: intPtr(9)}, nil
	}

	snapshot, err := newTestService(provider).ResolveByID(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 9, *snapshot.Tier)
}

func TestResolveByNameThenByID_SameTier(t *testing.T) {
	player := &faceit.Player{ID: "p-5", Nickname: "niko", Elo: intPtr(1251), SkillLevel: intPtr(5)}
	provider := NewFakePlayerProvider()
	provider.PlayerByNicknameFunc = func(context.Context, string) (*faceit.Player, error) { return player, nil }
	provider.PlayerByIDFunc = func(_ context.Context, id string) (*faceit.Player, error) {
		assert.Equal(t, "p-5", id)
		return player, nil
	}
	svc := newTestService(provider)

	byName, err := svc.ResolveByName(context.Background(), "niko")
	require.NoError(t, err)
	byID, err := svc.ResolveByID(context.Background(), byName.PlayerID)
	require.NoError(t, err)

	assert.Equal(t, *byName.Tier, *byID.Tier)
	assert.Equal(t, []string{"PlayerByNickname", "PlayerByID"}, provider.Trace())
}

func TestResolve_RecoversPanic(t *testing.T) {
	provider := NewFakePlayerProvider()
	provider.PlayerByIDFunc = func(context.Context, string) (*faceit.Player, error) {
		panic("boom")
	}

	_, err := newTestService(provider).ResolveByID(context.Background(), "p")
	assert.ErrorContains(t, err, "panic in ResolveByID")
}
