// Package discordplatform implements the presentation Platform on top of discordgo.
package discordplatform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/bwmarrin/discordgo"
)

// RESTClient is the subset of *discordgo.Session used for REST calls.
type RESTClient interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildLeave(guildID string, options ...discordgo.RequestOption) error
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

var _ RESTClient = (*discordgo.Session)(nil)

// Platform adapts a Discord session to presentationservice.Platform.
type Platform struct {
	state      *discordgo.State
	rest       RESTClient
	guildLimit int
}

var _ presentationservice.Platform = (*Platform)(nil)

// New builds a Platform. Guild listings come from the gateway state and are
// capped at guildLimit entries.
func New(state *discordgo.State, rest RESTClient, guildLimit int) *Platform {
	return &Platform{state: state, rest: rest, guildLimit: guildLimit}
}

// NewFromSession wires a Platform to a live session.
func NewFromSession(session *discordgo.Session, guildLimit int) *Platform {
	return New(session.State, session, guildLimit)
}

// memberPatch is sent as-is so an empty nick and an empty role list reach Discord
// instead of being dropped by omitempty.
type memberPatch struct {
	Nick  string   `json:"nick"`
	Roles []string `json:"roles"`
}

func (p *Platform) Guilds(ctx context.Context) ([]presentationdomain.Guild, error) {
	p.state.RLock()
	defer p.state.RUnlock()

	guilds := make([]presentationdomain.Guild, 0, len(p.state.Guilds))
	for _, g := range p.state.Guilds {
		if p.guildLimit > 0 && len(guilds) >= p.guildLimit {
			break
		}
		guilds = append(guilds, toGuild(g))
	}
	return guilds, nil
}

func (p *Platform) Guild(ctx context.Context, guildID sharedtypes.GuildID) (*presentationdomain.Guild, error) {
	if g, err := p.state.Guild(string(guildID)); err == nil && g.OwnerID != "" {
		guild := toGuild(g)
		return &guild, nil
	}

	g, err := p.rest.Guild(string(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	guild := toGuild(g)
	return &guild, nil
}

func (p *Platform) Roles(ctx context.Context, guildID sharedtypes.GuildID) ([]presentationdomain.Role, error) {
	roles, err := p.rest.GuildRoles(string(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]presentationdomain.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, presentationdomain.Role{ID: sharedtypes.RoleID(r.ID), Name: r.Name})
	}
	return out, nil
}

func (p *Platform) CreateRole(ctx context.Context, guildID sharedtypes.GuildID, spec presentationdomain.RoleSpec) (*presentationdomain.Role, error) {
	color := spec.Color
	hoist := spec.Hoist
	mentionable := spec.Mentionable

	role, err := p.rest.GuildRoleCreate(string(guildID), &discordgo.RoleParams{
		Name:        spec.Name,
		Color:       &color,
		Hoist:       &hoist,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return &presentationdomain.Role{ID: sharedtypes.RoleID(role.ID), Name: role.Name}, nil
}

func (p *Platform) Member(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*presentationdomain.Member, error) {
	m, err := p.rest.GuildMember(string(guildID), string(userID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	member := toMember(m)
	return &member, nil
}

func (p *Platform) Members(ctx context.Context, guildID sharedtypes.GuildID, after sharedtypes.DiscordID, limit int) ([]presentationdomain.Member, error) {
	members, err := p.rest.GuildMembers(string(guildID), string(after), limit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]presentationdomain.Member, 0, len(members))
	for _, m := range members {
		out = append(out, toMember(m))
	}
	return out, nil
}

// EditMember writes nickname and roles in a single PATCH.
func (p *Platform) EditMember(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, edit presentationdomain.MemberEdit) error {
	patch := memberPatch{Nick: edit.Nick, Roles: make([]string, 0, len(edit.Roles))}
	for _, id := range edit.Roles {
		patch.Roles = append(patch.Roles, string(id))
	}

	endpoint := discordgo.EndpointGuildMember(string(guildID), string(userID))
	bucket := discordgo.EndpointGuildMember(string(guildID), "")
	if _, err := p.rest.RequestWithBucketID(http.MethodPatch, endpoint, patch, bucket, discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Platform) LeaveGuild(ctx context.Context, guildID sharedtypes.GuildID) error {
	if err := p.rest.GuildLeave(string(guildID), discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	return nil
}

func toGuild(g *discordgo.Guild) presentationdomain.Guild {
	return presentationdomain.Guild{
		ID:      sharedtypes.GuildID(g.ID),
		Name:    g.Name,
		OwnerID: sharedtypes.DiscordID(g.OwnerID),
	}
}

func toMember(m *discordgo.Member) presentationdomain.Member {
	member := presentationdomain.Member{Nick: m.Nick}
	if m.User != nil {
		member.UserID = sharedtypes.DiscordID(m.User.ID)
	}
	for _, id := range m.Roles {
		member.Roles = append(member.Roles, sharedtypes.RoleID(id))
	}
	return member
}

// mapError translates discordgo failures onto the presentation error set.
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", presentationdomain.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", presentationdomain.ErrPermissionDenied, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", presentationdomain.ErrRateLimited, err)
		}
	}

	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %w", presentationdomain.ErrRateLimited, err)
	}
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return fmt.Errorf("%w: %w", presentationdomain.ErrNotFound, err)
	}
	return err
}
