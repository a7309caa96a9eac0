package rankservice

import (
	"context"

	"github.com/Black-And-White-Club/elo-bot/app/modules/rank/infrastructure/faceit"
)

// FakePlayerProvider is a programmable PlayerProvider.
type FakePlayerProvider struct {
	trace []string

	PlayerByNicknameFunc func(ctx context.Context, nickname string) (*faceit.Player, error)
	PlayerByIDFunc       func(ctx context.Context, playerID string) (*faceit.Player, error)
}

func NewFakePlayerProvider() *FakePlayerProvider {
	return &FakePlayerProvider{trace: []string{}}
}

func (f *FakePlayerProvider) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePlayerProvider) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePlayerProvider) PlayerByNickname(ctx context.Context, nickname string) (*faceit.Player, error) {
	f.record("PlayerByNickname")
	if f.PlayerByNicknameFunc != nil {
		return f.PlayerByNicknameFunc(ctx, nickname)
	}
	return nil, faceit.ErrNotFound
}

func (f *FakePlayerProvider) PlayerByID(ctx context.Context, playerID string) (*faceit.Player, error) {
	f.record("PlayerByID")
	if f.PlayerByIDFunc != nil {
		return f.PlayerByIDFunc(ctx, playerID)
	}
	return nil, faceit.ErrNotFound
}

var _ PlayerProvider = (*FakePlayerProvider)(nil)
