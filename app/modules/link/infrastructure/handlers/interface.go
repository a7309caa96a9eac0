package linkhandlers

import (
	"context"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	linkevents "github.com/Black-And-White-Club/elo-bot/app/events/link"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
)

// Handlers handles link module events.
type Handlers interface {
	HandleLinkRequested(ctx context.Context, payload *linkevents.LinkRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleUnlinkRequested(ctx context.Context, payload *linkevents.UnlinkRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleStatusRequested(ctx context.Context, payload *linkevents.StatusRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRestoreRequested(ctx context.Context, payload *linkevents.RestoreRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// RestoreScheduler runs a restore in the background and answers the interaction when done.
type RestoreScheduler interface {
	EnqueueRestore(ctx context.Context, interaction *events.Interaction) error
}
