package discordrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	discordhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/discord/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// DiscordRouter handles Watermill handler registration for command replies.
type DiscordRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewDiscordRouter creates a new DiscordRouter.
func NewDiscordRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *DiscordRouter {
	return &DiscordRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *DiscordRouter) Configure(_ context.Context, handlers discordhandlers.Handlers) error {
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

func (r *DiscordRouter) registerHandlers(handlers discordhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, discordevents.ReplyRequestedV1, handlers.HandleReplyRequested)

	r.logger.Info("Discord module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "discord." + topic
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
func (r *DiscordRouter) Close() error {
	return r.router.Close()
}
