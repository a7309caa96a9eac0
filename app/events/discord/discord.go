// Package discordevents defines topics consumed by the Discord command layer.
package discordevents

import (
	"github.com/Black-And-White-Club/elo-bot/app/events"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
)

// ReplyRequestedV1 asks the command layer to edit a deferred response.
const ReplyRequestedV1 = "discord.reply.requested.v1"

type ReplyRequestedPayloadV1 struct {
	Interaction events.Interaction `json:"interaction"`
	Content     string             `json:"content"`
}

// Reply builds the handler result that answers an interaction. It returns nil
// when there is nothing to answer, so callers can append it unconditionally.
func Reply(interaction *events.Interaction, content string) []handlerwrapper.Result {
	if !interaction.Valid() {
		return nil
	}
	return []handlerwrapper.Result{{
		Topic: ReplyRequestedV1,
		Payload: &ReplyRequestedPayloadV1{
			Interaction: *interaction,
			Content:     content,
		},
	}}
}
