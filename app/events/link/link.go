// Package linkevents defines the link module's topics and payloads.
package linkevents

import (
	"github.com/Black-And-White-Club/elo-bot/app/events"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

const (
	// LinkRequestedV1 asks to link a Discord user to a FACEIT account by name.
	LinkRequestedV1 = "link.requested.v1"
	// LinkedV1 announces a new link.
	LinkedV1 = "link.linked.v1"
	// UnlinkRequestedV1 asks to remove a user's link.
	UnlinkRequestedV1 = "link.unlink.requested.v1"
	// UnlinkedV1 announces a removed link.
	UnlinkedV1 = "link.unlinked.v1"
	// StatusRequestedV1 asks for guild and link counts.
	StatusRequestedV1 = "link.status.requested.v1"
	// RestoreRequestedV1 asks to rebuild links from existing nicknames.
	RestoreRequestedV1 = "link.restore.requested.v1"
)

// LinkRequestedPayloadV1 is published by the command layer for link and forcelink.
type LinkRequestedPayloadV1 struct {
	DiscordID   sharedtypes.DiscordID `json:"discord_id"`
	DisplayName string                `json:"display_name"`
	Query       string                `json:"query"`
	Forced      bool                  `json:"forced"`
	Interaction *events.Interaction   `json:"interaction,omitempty"`
}

// LinkedPayloadV1 is published after a link is stored.
type LinkedPayloadV1 struct {
	DiscordID sharedtypes.DiscordID `json:"discord_id"`
	FaceitID  sharedtypes.FaceitID  `json:"faceit_id"`
	Elo       int                   `json:"elo"`
	Tier      int                   `json:"tier"`
}

// UnlinkRequestedPayloadV1 is published by the command layer for unlink and forceunlink.
type UnlinkRequestedPayloadV1 struct {
	DiscordID   sharedtypes.DiscordID `json:"discord_id"`
	DisplayName string                `json:"display_name"`
	Forced      bool                  `json:"forced"`
	Interaction *events.Interaction   `json:"interaction,omitempty"`
}

// UnlinkedPayloadV1 is published after a link is removed.
type UnlinkedPayloadV1 struct {
	DiscordID sharedtypes.DiscordID `json:"discord_id"`
}

// StatusRequestedPayloadV1 carries only the interaction to answer.
type StatusRequestedPayloadV1 struct {
	Interaction *events.Interaction `json:"interaction,omitempty"`
}

// RestoreRequestedPayloadV1 carries only the interaction to answer.
type RestoreRequestedPayloadV1 struct {
	Interaction *events.Interaction `json:"interaction,omitempty"`
}
