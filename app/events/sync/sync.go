// Package syncevents defines the sync module's topics and payloads.
package syncevents

import (
	"github.com/Black-And-White-Club/elo-bot/app/events"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

const (
	// ResyncRequestedV1 asks to refresh one linked user's presentation.
	ResyncRequestedV1 = "sync.resync.requested.v1"
	// SweepRequestedV1 asks for an immediate sweep outside the schedule.
	SweepRequestedV1 = "sync.sweep.requested.v1"
)

type ResyncRequestedPayloadV1 struct {
	DiscordID   sharedtypes.DiscordID `json:"discord_id"`
	Interaction *events.Interaction   `json:"interaction,omitempty"`
}

type SweepRequestedPayloadV1 struct {
	Interaction *events.Interaction `json:"interaction,omitempty"`
}
