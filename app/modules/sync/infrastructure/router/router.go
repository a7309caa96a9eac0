package syncrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	syncevents "github.com/Black-And-White-Club/elo-bot/app/events/sync"
	synchandlers "github.com/Black-And-White-Club/elo-bot/app/modules/sync/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// SyncRouter handles Watermill handler registration for sync events.
type SyncRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewSyncRouter creates a new SyncRouter.
func NewSyncRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *SyncRouter {
	return &SyncRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *SyncRouter) Configure(_ context.Context, handlers synchandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *SyncRouter) registerHandlers(handlers synchandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, syncevents.ResyncRequestedV1, handlers.HandleResyncRequested)
	registerHandler(deps, syncevents.SweepRequestedV1, handlers.HandleSweepRequested)

	r.logger.Info("Sync module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "sync." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// Close shuts down the router.
func (r *SyncRouter) Close() error {
	return r.router.Close()
}
