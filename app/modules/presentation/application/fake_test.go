package presentationservice

import (
	"context"
	"fmt"
	"sync"

	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// FakePlatform is an in-memory Platform with overridable behaviour.
type FakePlatform struct {
	mu    sync.Mutex
	trace []string

	GuildFunc      func(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.Guild, error)
	RolesFunc      func(ctx context.Context, guildID sharedtypes.GuildID) ([]presentationdomain.Role, error)
	CreateRoleFunc func(ctx context.Context, guildID sharedtypes.GuildID, spec presentationdomain.RoleSpec) (*presentationdomain.Role, error)
	MemberFunc     func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*presentationdomain.Member, error)
	EditMemberFunc func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, edit presentationdomain.MemberEdit) error

	CreatedRoles []presentationdomain.RoleSpec
	Edits        []presentationdomain.MemberEdit
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{trace: []string{}}
}

func (f *FakePlatform) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakePlatform) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePlatform) Guilds(ctx context.Context) ([]presentationdomain.Guild, error) {
	f.record("Guilds")
	return nil, nil
}

func (f *FakePlatform) Guild(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.Guild, error) {
	f.record("Guild")
	if f.GuildFunc != nil {
		return f.GuildFunc(ctx, guildID)
	}
	return &presentationdomain.Guild{ID: guildID, OwnerID: "owner"}, nil
}

func (f *FakePlatform) Roles(ctx context.Context, guildID sharedtypes.GuildID) ([]presentationdomain.Role, error) {
	f.record("Roles")
	if f.RolesFunc != nil {
		return f.RolesFunc(ctx, guildID)
	}
	return nil, nil
}

func (f *FakePlatform) CreateRole(ctx context.Context, guildID sharedtypes.GuildID, spec presentationdomain.RoleSpec) (*presentationdomain.Role, error) {
	f.record("CreateRole")
	f.mu.Lock()
	f.CreatedRoles = append(f.CreatedRoles, spec)
	n := len(f.CreatedRoles)
	f.mu.Unlock()
	if f.CreateRoleFunc != nil {
		return f.CreateRoleFunc(ctx, guildID, spec)
	}
	return &presentationdomain.Role{ID: sharedtypes.RoleID(fmt.Sprintf("role-%d", n)), Name: spec.Name}, nil
}

func (f *FakePlatform) Member(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*presentationdomain.Member, error) {
	f.record("Member")
	if f.MemberFunc != nil {
		return f.MemberFunc(ctx, guildID, userID)
	}
	return nil, presentationdomain.ErrNotFound
}

func (f *FakePlatform) Members(ctx context.Context, guildID sharedtypes.GuildID, after sharedtypes.DiscordID, limit int) ([]presentationdomain.Member, error) {
	f.record("Members")
	return nil, nil
}

func (f *FakePlatform) EditMember(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, edit presentationdomain.MemberEdit) error {
	f.record("EditMember")
	f.mu.Lock()
	f.Edits = append(f.Edits, edit)
	f.mu.Unlock()
	if f.EditMemberFunc != nil {
		return f.EditMemberFunc(ctx, guildID, userID, edit)
	}
	return nil
}

func (f *FakePlatform) LeaveGuild(ctx context.Context, guildID sharedtypes.GuildID) error {
	f.record("LeaveGuild")
	return nil
}

var _ Platform = (*FakePlatform)(nil)
