package presentationrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	guildevents "github.com/Black-And-White-Club/elo-bot/app/events/guild"
	presentationhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// PresentationRouter handles Watermill handler registration for guild lifecycle events.
type PresentationRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewPresentationRouter creates a new PresentationRouter.
func NewPresentationRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *PresentationRouter {
	return &PresentationRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *PresentationRouter) Configure(_ context.Context, handlers presentationhandlers.Handlers) error {
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

func (r *PresentationRouter) registerHandlers(handlers presentationhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, guildevents.GuildJoinedV1, handlers.HandleGuildJoined)
	registerHandler(deps, guildevents.GuildListRequestedV1, handlers.HandleGuildListRequested)
	registerHandler(deps, guildevents.GuildLeaveRequestedV1, handlers.HandleGuildLeaveRequested)

	r.logger.Info("Presentation module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "presentation." + topic
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
func (r *PresentationRouter) Close() error {
	return r.router.Close()
}
