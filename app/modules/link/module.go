package link

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	linkservice "github.com/Black-And-White-Club/elo-bot/app/modules/link/application"
	linkhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/handlers"
	linkqueue "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/queue"
	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	linkrouter "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/router"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	"github.com/Black-And-White-Club/elo-bot/app/queue"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the link module.
type Module struct {
	LinkService   linkservice.Service
	LinkRouter    *linkrouter.LinkRouter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewLinkModule creates and initializes a new link module.
func NewLinkModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	jobs *queue.Service,
	db bun.IDB,
	repo linkdb.Repository,
	ranks rankservice.Service,
	syncer linkservice.UserSyncer,
	directory linkservice.MemberDirectory,
) (*Module, error) {
	logger := obs.Logger.With("module", "link")
	tracer := obs.Tracer

	logger.InfoContext(ctx, "link.NewLinkModule initializing")

	metrics := observability.NewOperationMetrics(obs.Registry, "elo_bot_link")

	service := linkservice.NewLinkService(repo, db, ranks, syncer, directory, logger, metrics, tracer)

	queue.AddWorker(jobs, linkqueue.NewRestoreWorker(service, eventBus, logger))
	handlers := linkhandlers.NewLinkHandlers(service, linkqueue.NewRestoreScheduler(jobs), logger)

	linkRouter := linkrouter.NewLinkRouter(logger, router, eventBus, eventBus, tracer)
	if err := linkRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure link router: %w", err)
	}

	return &Module{
		LinkService:   service,
		LinkRouter:    linkRouter,
		observability: obs,
	}, nil
}

// Run starts the link module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting link module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Link module goroutine stopped")
}

// Close shuts down the link module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.LinkRouter != nil {
		if err := m.LinkRouter.Close(); err != nil {
			return fmt.Errorf("error closing LinkRouter: %w", err)
		}
	}
	m.observability.Logger.Info("Link module stopped")
	return nil
}
