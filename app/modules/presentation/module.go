package presentation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	discordplatform "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/infrastructure/discord"
	presentationhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/infrastructure/handlers"
	presentationrouter "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/infrastructure/router"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

// Config holds the presentation module's settings.
type Config struct {
	GuildLimit      int
	RoleCreateDelay time.Duration
}

// Module represents the presentation module: the Discord platform adapter,
// tier role provisioning and member reconciliation.
type Module struct {
	Platform           *discordplatform.Platform
	Provisioner        *presentationservice.Provisioner
	Reconciler         *presentationservice.Reconciler
	PresentationRouter *presentationrouter.PresentationRouter
	cancelFunc         context.CancelFunc
	observability      *observability.Observability
}

// NewPresentationModule creates and initializes a new presentation module.
func NewPresentationModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	session *discordgo.Session,
	catalog *rankdomain.TierCatalog,
	cfg Config,
) (*Module, error) {
	logger := obs.Logger.With("module", "presentation")
	tracer := obs.Tracer

	logger.InfoContext(ctx, "presentation.NewPresentationModule initializing")

	metrics := observability.NewOperationMetrics(obs.Registry, "elo_bot_presentation")

	platform := discordplatform.NewFromSession(session, cfg.GuildLimit)
	provisioner := presentationservice.NewProvisioner(platform, catalog, cfg.RoleCreateDelay, logger, metrics, tracer)
	reconciler := presentationservice.NewReconciler(platform, catalog, logger, metrics, tracer)

	handlers := presentationhandlers.NewPresentationHandlers(provisioner, platform, logger)

	presentationRouter := presentationrouter.NewPresentationRouter(logger, router, eventBus, eventBus, tracer)
	if err := presentationRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure presentation router: %w", err)
	}

	return &Module{
		Platform:           platform,
		Provisioner:        provisioner,
		Reconciler:         reconciler,
		PresentationRouter: presentationRouter,
		observability:      obs,
	}, nil
}

// Run starts the presentation module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting presentation module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Presentation module goroutine stopped")
}

// Close shuts down the presentation module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.PresentationRouter != nil {
		if err := m.PresentationRouter.Close(); err != nil {
			return fmt.Errorf("error closing PresentationRouter: %w", err)
		}
	}
	m.observability.Logger.Info("Presentation module stopped")
	return nil
}
