package discordhandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEditor struct {
	interactions []*discordgo.Interaction
	contents     []string
	err          error
}

func (f *fakeEditor) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.interactions = append(f.interactions, interaction)
	f.contents = append(f.contents, *newresp.Content)
	return &discordgo.Message{}, f.err
}

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestHandleReplyRequested(t *testing.T) {
	tests := []struct {
		name      string
		payload   discordevents.ReplyRequestedPayloadV1
		err       error
		wantErr   bool
		wantEdits int
	}{
		{
			name:      "edits deferred response",
			payload:   discordevents.ReplyRequestedPayloadV1{Interaction: events.Interaction{ApplicationID: "app", Token: "tok"}, Content: "done"},
			wantEdits: 1,
		},
		{
			name:    "no interaction to answer",
			payload: discordevents.ReplyRequestedPayloadV1{Content: "done"},
		},
		{
			name:      "expired token is dropped",
			payload:   discordevents.ReplyRequestedPayloadV1{Interaction: events.Interaction{ApplicationID: "app", Token: "tok"}, Content: "done"},
			err:       restError(http.StatusNotFound),
			wantEdits: 1,
		},
		{
			name:      "transient failure is redelivered",
			payload:   discordevents.ReplyRequestedPayloadV1{Interaction: events.Interaction{ApplicationID: "app", Token: "tok"}, Content: "done"},
			err:       errors.New("connection reset"),
			wantErr:   true,
			wantEdits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := &fakeEditor{err: tt.err}
			h := NewDiscordHandlers(editor, slog.New(slog.NewTextHandler(io.Discard, nil)))

			res, err := h.HandleReplyRequested(context.Background(), &tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Empty(t, res)
			require.Len(t, editor.contents, tt.wantEdits)
			if tt.wantEdits > 0 {
				assert.Equal(t, "app", editor.interactions[0].AppID)
				assert.Equal(t, "tok", editor.interactions[0].Token)
				assert.Equal(t, "done", editor.contents[0])
			}
		})
	}
}

func TestHandleReplyRequested_TruncatesLongContent(t *testing.T) {
	editor := &fakeEditor{}
	h := NewDiscordHandlers(editor, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := h.HandleReplyRequested(context.Background(), &discordevents.ReplyRequestedPayloadV1{
		Interaction: events.Interaction{ApplicationID: "app", Token: "tok"},
		Content:     strings.Repeat("g", 2500),
	})
	require.NoError(t, err)
	assert.Equal(t, maxContentLength, len([]rune(editor.contents[0])))
}
