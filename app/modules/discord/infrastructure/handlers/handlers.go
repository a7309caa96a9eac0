package discordhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/bwmarrin/discordgo"
)

// maxContentLength is the longest message body Discord accepts.
const maxContentLength = 2000

// Handlers handles events addressed to the Discord command layer.
type Handlers interface {
	HandleReplyRequested(ctx context.Context, payload *discordevents.ReplyRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// ResponseEditor edits deferred interaction responses.
type ResponseEditor interface {
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordHandlers implements Handlers.
type DiscordHandlers struct {
	editor ResponseEditor
	logger *slog.Logger
}

var _ Handlers = (*DiscordHandlers)(nil)

// NewDiscordHandlers creates a new DiscordHandlers.
func NewDiscordHandlers(editor ResponseEditor, logger *slog.Logger) *DiscordHandlers {
	return &DiscordHandlers{editor: editor, logger: logger}
}

// HandleReplyRequested writes content into the deferred response. Expired or
// unknown interactions are dropped; other failures are redelivered.
func (h *DiscordHandlers) HandleReplyRequested(ctx context.Context, payload *discordevents.ReplyRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if !payload.Interaction.Valid() {
		return nil, nil
	}

	content := truncate(payload.Content, maxContentLength)
	interaction := &discordgo.Interaction{
		AppID: payload.Interaction.ApplicationID,
		Token: payload.Interaction.Token,
	}

	_, err := h.editor.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx))
	if err == nil {
		return nil, nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil &&
		(restErr.Response.StatusCode == http.StatusNotFound || restErr.Response.StatusCode == http.StatusUnauthorized) {
		h.logger.WarnContext(ctx, "Dropping reply to expired interaction",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil, nil
	}
	return nil, fmt.Errorf("failed to edit interaction response: %w", err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
