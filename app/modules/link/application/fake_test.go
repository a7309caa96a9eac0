package linkservice

import (
	"context"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	syncservice "github.com/Black-And-White-Club/elo-bot/app/modules/sync/application"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// FakeRanks resolves names from a fixed table.
type FakeRanks struct {
	Players map[string]*rankdomain.RankSnapshot
	Err     error
}

var _ rankservice.Service = (*FakeRanks)(nil)

func (f *FakeRanks) ResolveByName(ctx context.Context, nickname string) (*rankdomain.RankSnapshot, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if s, ok := f.Players[nickname]; ok {
		return s, nil
	}
	return nil, rankservice.ErrAccountNotFound
}

func (f *FakeRanks) ResolveByID(ctx context.Context, playerID sharedtypes.FaceitID) (*rankdomain.RankSnapshot, error) {
	for _, s := range f.Players {
		if s.PlayerID == playerID {
			return s, nil
		}
	}
	return nil, rankservice.ErrAccountNotFound
}

// FakeSyncer records reactive sync requests.
type FakeSyncer struct {
	trace []string

	SyncUserFunc  func(ctx context.Context, discordID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot) (syncservice.UserReport, error)
	ClearUserFunc func(ctx context.Context, discordID sharedtypes.DiscordID) (syncservice.UserReport, error)
}

var _ UserSyncer = (*FakeSyncer)(nil)

func (f *FakeSyncer) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSyncer) SyncUser(ctx context.Context, discordID sharedtypes.DiscordID, snapshot *rankdomain.RankSnapshot) (syncservice.UserReport, error) {
	f.trace = append(f.trace, "SyncUser:"+string(discordID))
	if f.SyncUserFunc != nil {
		return f.SyncUserFunc(ctx, discordID, snapshot)
	}
	return syncservice.UserReport{}, nil
}

func (f *FakeSyncer) ClearUser(ctx context.Context, discordID sharedtypes.DiscordID) (syncservice.UserReport, error) {
	f.trace = append(f.trace, "ClearUser:"+string(discordID))
	if f.ClearUserFunc != nil {
		return f.ClearUserFunc(ctx, discordID)
	}
	return syncservice.UserReport{}, nil
}

// FakeDirectory serves members from memory in pages.
type FakeDirectory struct {
	GuildList  []presentationdomain.Guild
	MemberList map[sharedtypes.GuildID][]presentationdomain.Member
	MembersErr map[sharedtypes.GuildID]error
	pages      int
}

var _ MemberDirectory = (*FakeDirectory)(nil)

func (f *FakeDirectory) Guilds(ctx context.Context) ([]presentationdomain.Guild, error) {
	return f.GuildList, nil
}

func (f *FakeDirectory) Members(ctx context.Context, guildID sharedtypes.GuildID, after sharedtypes.DiscordID, limit int) ([]presentationdomain.Member, error) {
	f.pages++
	if err := f.MembersErr[guildID]; err != nil {
		return nil, err
	}
	all := f.MemberList[guildID]
	start := 0
	if after != "" {
		for i, m := range all {
			if m.UserID == after {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(all))
	return all[start:end], nil
}
