package synchandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	syncevents "github.com/Black-And-White-Club/elo-bot/app/events/sync"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	trace []string
	err   error
}

func (f *fakeJobs) EnqueueResync(ctx context.Context, discordID sharedtypes.DiscordID, interaction *events.Interaction) error {
	f.trace = append(f.trace, "resync:"+string(discordID))
	return f.err
}

func (f *fakeJobs) EnqueueSweep(ctx context.Context, interaction *events.Interaction) error {
	f.trace = append(f.trace, "sweep")
	return f.err
}

var interaction = &events.Interaction{ApplicationID: "app", Token: "tok"}

func TestSyncHandlers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		call      func(h *SyncHandlers) error
		wantTrace []string
		wantReply bool
	}{
		{
			name: "resync queued",
			call: func(h *SyncHandlers) error {
				res, err := h.HandleResyncRequested(context.Background(), &syncevents.ResyncRequestedPayloadV1{DiscordID: "7", Interaction: interaction})
				assert.Empty(t, res)
				return err
			},
			wantTrace: []string{"resync:7"},
		},
		{
			name: "sweep queued",
			call: func(h *SyncHandlers) error {
				res, err := h.HandleSweepRequested(context.Background(), &syncevents.SweepRequestedPayloadV1{Interaction: interaction})
				assert.Empty(t, res)
				return err
			},
			wantTrace: []string{"sweep"},
		},
		{
			name: "resync enqueue failure replies",
			err:  errors.New("queue down"),
			call: func(h *SyncHandlers) error {
				res, err := h.HandleResyncRequested(context.Background(), &syncevents.ResyncRequestedPayloadV1{DiscordID: "7", Interaction: interaction})
				require.Len(t, res, 1)
				assert.Equal(t, discordevents.ReplyRequestedV1, res[0].Topic)
				assert.Equal(t, MessageSomethingWentWrong, res[0].Payload.(*discordevents.ReplyRequestedPayloadV1).Content)
				return err
			},
			wantTrace: []string{"resync:7"},
		},
		{
			name: "sweep enqueue failure replies",
			err:  errors.New("queue down"),
			call: func(h *SyncHandlers) error {
				res, err := h.HandleSweepRequested(context.Background(), &syncevents.SweepRequestedPayloadV1{Interaction: interaction})
				assert.Len(t, res, 1)
				return err
			},
			wantTrace: []string{"sweep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{err: tt.err}
			h := NewSyncHandlers(jobs, slog.New(slog.NewTextHandler(io.Discard, nil)))

			require.NoError(t, tt.call(h))
			assert.Equal(t, tt.wantTrace, jobs.trace)
		})
	}
}
