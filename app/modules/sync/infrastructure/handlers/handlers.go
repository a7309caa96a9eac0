package synchandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	syncevents "github.com/Black-And-White-Club/elo-bot/app/events/sync"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// MessageSomethingWentWrong answers a request that could not be queued.
const MessageSomethingWentWrong = "Whops! Something went wrong."

// Handlers handles sync module events.
type Handlers interface {
	HandleResyncRequested(ctx context.Context, payload *syncevents.ResyncRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSweepRequested(ctx context.Context, payload *syncevents.SweepRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// JobScheduler queues sync work. Workers answer the interaction once done.
type JobScheduler interface {
	EnqueueResync(ctx context.Context, discordID sharedtypes.DiscordID, interaction *events.Interaction) error
	EnqueueSweep(ctx context.Context, interaction *events.Interaction) error
}

// SyncHandlers hands sync requests to the job queue.
type SyncHandlers struct {
	jobs   JobScheduler
	logger *slog.Logger
}

var _ Handlers = (*SyncHandlers)(nil)

// NewSyncHandlers creates a new SyncHandlers.
func NewSyncHandlers(jobs JobScheduler, logger *slog.Logger) *SyncHandlers {
	return &SyncHandlers{jobs: jobs, logger: logger}
}

func (h *SyncHandlers) HandleResyncRequested(ctx context.Context, payload *syncevents.ResyncRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if err := h.jobs.EnqueueResync(ctx, payload.DiscordID, payload.Interaction); err != nil {
		h.logger.ErrorContext(ctx, "Failed to enqueue resync",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(payload.DiscordID),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, MessageSomethingWentWrong), nil
	}
	return nil, nil
}

func (h *SyncHandlers) HandleSweepRequested(ctx context.Context, payload *syncevents.SweepRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if err := h.jobs.EnqueueSweep(ctx, payload.Interaction); err != nil {
		h.logger.ErrorContext(ctx, "Failed to enqueue sweep",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, MessageSomethingWentWrong), nil
	}
	return nil, nil
}
