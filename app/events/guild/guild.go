// Package guildevents defines guild lifecycle topics handled by the presentation module.
package guildevents

import (
	"github.com/Black-And-White-Club/elo-bot/app/events"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

const (
	// GuildJoinedV1 is published when the gateway reports a guild.
	GuildJoinedV1 = "presentation.guild.joined.v1"
	// GuildListRequestedV1 asks for the guilds the bot is in.
	GuildListRequestedV1 = "presentation.guild.list.requested.v1"
	// GuildLeaveRequestedV1 asks the bot to leave a guild.
	GuildLeaveRequestedV1 = "presentation.guild.leave.requested.v1"
)

type GuildJoinedPayloadV1 struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	Name    string              `json:"name"`
}

type GuildListRequestedPayloadV1 struct {
	Interaction *events.Interaction `json:"interaction,omitempty"`
}

type GuildLeaveRequestedPayloadV1 struct {
	GuildID     sharedtypes.GuildID `json:"guild_id"`
	Interaction *events.Interaction `json:"interaction,omitempty"`
}
