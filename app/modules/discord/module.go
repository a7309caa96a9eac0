package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	guildevents "github.com/Black-And-White-Club/elo-bot/app/events/guild"
	discordcommands "github.com/Black-And-White-Club/elo-bot/app/modules/discord/infrastructure/commands"
	discordhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/discord/infrastructure/handlers"
	discordrouter "github.com/Black-And-White-Club/elo-bot/app/modules/discord/infrastructure/router"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Config holds the command layer's settings.
type Config struct {
	ApplicationID string
	OwnerID       string
}

// Per-user command allowance outside owner commands.
const (
	commandInterval = 5 * time.Second
	commandBurst    = 3
)

// Module represents the Discord command layer: slash commands in, replies out.
type Module struct {
	Dispatcher    *discordcommands.Dispatcher
	DiscordRouter *discordrouter.DiscordRouter
	session       *discordgo.Session
	eventBus      eventbus.EventBus
	appID         string
	removers      []func()
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewDiscordModule creates and initializes a new Discord module and attaches
// its gateway handlers to session.
func NewDiscordModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	session *discordgo.Session,
	cfg Config,
) (*Module, error) {
	logger := obs.Logger.With("module", "discord")
	tracer := obs.Tracer

	logger.InfoContext(ctx, "discord.NewDiscordModule initializing")

	limiter := discordcommands.NewUserRateLimiter(rate.Every(commandInterval), commandBurst)
	dispatcher := discordcommands.NewDispatcher(session, eventBus, cfg.OwnerID, limiter, logger)

	handlers := discordhandlers.NewDiscordHandlers(session, logger)
	discordRouter := discordrouter.NewDiscordRouter(logger, router, eventBus, eventBus, tracer)
	if err := discordRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure discord router: %w", err)
	}

	m := &Module{
		Dispatcher:    dispatcher,
		DiscordRouter: discordRouter,
		session:       session,
		eventBus:      eventBus,
		appID:         cfg.ApplicationID,
		observability: obs,
	}

	m.removers = append(m.removers,
		session.AddHandler(dispatcher.HandleInteraction),
		session.AddHandler(m.handleGuildCreate),
		session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			logger.Info("Bot is ready", attr.String("user", r.User.Username), attr.Int("guilds", len(r.Guilds)))
		}),
	)
	return m, nil
}

// handleGuildCreate announces every guild the gateway reports, both at
// startup and on join, so its tier roles get provisioned.
func (m *Module) handleGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	ctx := context.Background()
	logger := m.observability.Logger

	msg, err := handlerwrapper.NewMessage(ctx, guildevents.GuildJoinedV1, &guildevents.GuildJoinedPayloadV1{
		GuildID: sharedtypes.GuildID(g.ID),
		Name:    g.Name,
	})
	if err == nil {
		err = m.eventBus.Publish(guildevents.GuildJoinedV1, msg)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish guild joined", attr.String("guild_id", g.ID), attr.Error(err))
	}
}

// Run registers slash commands once the session is open, then waits for ctx.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting discord module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	appID := m.appID
	if appID == "" && m.session.State != nil && m.session.State.User != nil {
		appID = m.session.State.User.ID
	}
	if err := m.Dispatcher.RegisterCommands(ctx, appID); err != nil {
		logger.ErrorContext(ctx, "Failed to register slash commands", attr.Error(err))
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Discord module goroutine stopped")
}

// Close detaches gateway handlers and shuts down the router.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	for _, remove := range m.removers {
		remove()
	}
	if m.DiscordRouter != nil {
		if err := m.DiscordRouter.Close(); err != nil {
			return fmt.Errorf("error closing DiscordRouter: %w", err)
		}
	}
	m.observability.Logger.Info("Discord module stopped")
	return nil
}
