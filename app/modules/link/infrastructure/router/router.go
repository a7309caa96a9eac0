package linkrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	linkevents "github.com/Black-And-White-Club/elo-bot/app/events/link"
	linkhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// LinkRouter handles Watermill handler registration for link events.
type LinkRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewLinkRouter creates a new LinkRouter.
func NewLinkRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *LinkRouter {
	return &LinkRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *LinkRouter) Configure(_ context.Context, handlers linkhandlers.Handlers) error {
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

func (r *LinkRouter) registerHandlers(handlers linkhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, linkevents.LinkRequestedV1, handlers.HandleLinkRequested)
	registerHandler(deps, linkevents.UnlinkRequestedV1, handlers.HandleUnlinkRequested)
	registerHandler(deps, linkevents.StatusRequestedV1, handlers.HandleStatusRequested)
	registerHandler(deps, linkevents.RestoreRequestedV1, handlers.HandleRestoreRequested)

	r.logger.Info("Link module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "link." + topic
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
func (r *LinkRouter) Close() error {
	return r.router.Close()
}
