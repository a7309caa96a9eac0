package discordcommands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	guildevents "github.com/Black-And-White-Club/elo-bot/app/events/guild"
	linkevents "github.com/Black-And-White-Club/elo-bot/app/events/link"
	syncevents "github.com/Black-And-White-Club/elo-bot/app/events/sync"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/bwmarrin/discordgo"
)

// Immediate reply texts.
const (
	MessageNotOwner           = "You are not allowed to use this command!"
	MessageInvalidUserID      = "User ID not in valid format."
	MessageInvalidGuildID     = "Guild ID not in valid format."
	MessageRateLimited        = "Slow down! Try again in a few seconds."
	MessageUnknownCommand     = "Unknown command."
	MessageSomethingWentWrong = "Whops! Something went wrong."
)

const (
	optionUsername = "username"
	optionUserID   = "user_id"
	optionGuildID  = "guild_id"
	optionCommand  = "command"
)

// request is the event a command invocation publishes.
type request struct {
	topic   string
	payload any
}

// invocation is one slash command call.
type invocation struct {
	user        *discordgo.User
	options     map[string]*discordgo.ApplicationCommandInteractionDataOption
	interaction *events.Interaction
}

func (inv invocation) str(name string) string {
	if opt, ok := inv.options[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

// command binds a slash command definition to the event it publishes. build
// returns either a request or an immediate reply.
type command struct {
	definition *discordgo.ApplicationCommand
	ownerOnly  bool
	build      func(inv invocation) (*request, string)
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func validSnowflake(id string) bool {
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}

func commandTable() map[string]command {
	table := map[string]command{
		"link": {
			definition: &discordgo.ApplicationCommand{
				Name:        "link",
				Description: "Links to Faceit account using Faceit username",
				Options:     []*discordgo.ApplicationCommandOption{stringOption(optionUsername, "Faceit username")},
			},
			build: func(inv invocation) (*request, string) {
				return &request{topic: linkevents.LinkRequestedV1, payload: &linkevents.LinkRequestedPayloadV1{
					DiscordID:   sharedtypes.DiscordID(inv.user.ID),
					DisplayName: inv.user.Username,
					Query:       inv.str(optionUsername),
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"unlink": {
			definition: &discordgo.ApplicationCommand{
				Name:        "unlink",
				Description: "Unlinks from Faceit account",
			},
			build: func(inv invocation) (*request, string) {
				return &request{topic: linkevents.UnlinkRequestedV1, payload: &linkevents.UnlinkRequestedPayloadV1{
					DiscordID:   sharedtypes.DiscordID(inv.user.ID),
					DisplayName: inv.user.Username,
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"status": {
			definition: &discordgo.ApplicationCommand{
				Name:        "status",
				Description: "Displays info about bot",
			},
			build: func(inv invocation) (*request, string) {
				return &request{topic: linkevents.StatusRequestedV1, payload: &linkevents.StatusRequestedPayloadV1{
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"guilds": {
			definition: &discordgo.ApplicationCommand{
				Name:        "guilds",
				Description: "Displays info about guilds which bot is member of",
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				return &request{topic: guildevents.GuildListRequestedV1, payload: &guildevents.GuildListRequestedPayloadV1{
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"leave": {
			definition: &discordgo.ApplicationCommand{
				Name:        "leave",
				Description: "Removes bot from guild by ID",
				Options:     []*discordgo.ApplicationCommandOption{stringOption(optionGuildID, "Guild ID")},
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				id := inv.str(optionGuildID)
				if !validSnowflake(id) {
					return nil, MessageInvalidGuildID
				}
				return &request{topic: guildevents.GuildLeaveRequestedV1, payload: &guildevents.GuildLeaveRequestedPayloadV1{
					GuildID:     sharedtypes.GuildID(id),
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"forcelink": {
			definition: &discordgo.ApplicationCommand{
				Name:        "forcelink",
				Description: "Force links another user to a Faceit account",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption(optionUsername, "Faceit username"),
					stringOption(optionUserID, "User ID"),
				},
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				id := inv.str(optionUserID)
				if !validSnowflake(id) {
					return nil, MessageInvalidUserID
				}
				return &request{topic: linkevents.LinkRequestedV1, payload: &linkevents.LinkRequestedPayloadV1{
					DiscordID:   sharedtypes.DiscordID(id),
					DisplayName: id,
					Query:       inv.str(optionUsername),
					Forced:      true,
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"forceunlink": {
			definition: &discordgo.ApplicationCommand{
				Name:        "forceunlink",
				Description: "Force unlinks another user from a Faceit account",
				Options:     []*discordgo.ApplicationCommandOption{stringOption(optionUserID, "User ID")},
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				id := inv.str(optionUserID)
				if !validSnowflake(id) {
					return nil, MessageInvalidUserID
				}
				return &request{topic: linkevents.UnlinkRequestedV1, payload: &linkevents.UnlinkRequestedPayloadV1{
					DiscordID:   sharedtypes.DiscordID(id),
					DisplayName: id,
					Forced:      true,
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"restore": {
			definition: &discordgo.ApplicationCommand{
				Name:        "restore",
				Description: "Restores links from nicknames set by the bot",
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				return &request{topic: linkevents.RestoreRequestedV1, payload: &linkevents.RestoreRequestedPayloadV1{
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"resync": {
			definition: &discordgo.ApplicationCommand{
				Name:        "resync",
				Description: "Refreshes a linked user's nickname and tier role",
				Options:     []*discordgo.ApplicationCommandOption{stringOption(optionUserID, "User ID")},
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				id := inv.str(optionUserID)
				if !validSnowflake(id) {
					return nil, MessageInvalidUserID
				}
				return &request{topic: syncevents.ResyncRequestedV1, payload: &syncevents.ResyncRequestedPayloadV1{
					DiscordID:   sharedtypes.DiscordID(id),
					Interaction: inv.interaction,
				}}, ""
			},
		},
		"sweep": {
			definition: &discordgo.ApplicationCommand{
				Name:        "sweep",
				Description: "Refreshes every linked user now",
			},
			ownerOnly: true,
			build: func(inv invocation) (*request, string) {
				return &request{topic: syncevents.SweepRequestedV1, payload: &syncevents.SweepRequestedPayloadV1{
					Interaction: inv.interaction,
				}}, ""
			},
		},
	}

	help := &discordgo.ApplicationCommand{
		Name:        "help",
		Description: "Displays all commands",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionCommand,
			Description: "Specific command to show help about",
		}},
	}
	table["help"] = command{
		definition: help,
		build: func(inv invocation) (*request, string) {
			return nil, renderHelp(table, inv.str(optionCommand))
		},
	}
	return table
}

func renderHelp(table map[string]command, only string) string {
	if only != "" {
		cmd, ok := table[strings.TrimPrefix(only, "/")]
		if !ok {
			return MessageUnknownCommand
		}
		return fmt.Sprintf("`/%s`: %s", cmd.definition.Name, cmd.definition.Description)
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		cmd := table[name]
		fmt.Fprintf(&b, "  /%s", name)
		for _, opt := range cmd.definition.Options {
			fmt.Fprintf(&b, " <%s>", opt.Name)
		}
		fmt.Fprintf(&b, " - %s", cmd.definition.Description)
		if cmd.ownerOnly {
			b.WriteString(" (owner only)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Definitions returns the slash commands to register, sorted by name.
func Definitions() []*discordgo.ApplicationCommand {
	table := commandTable()
	defs := make([]*discordgo.ApplicationCommand, 0, len(table))
	for _, cmd := range table {
		defs = append(defs, cmd.definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
