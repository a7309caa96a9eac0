package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	syncservice "github.com/Black-And-White-Club/elo-bot/app/modules/sync/application"
	synchandlers "github.com/Black-And-White-Club/elo-bot/app/modules/sync/infrastructure/handlers"
	syncqueue "github.com/Black-And-White-Club/elo-bot/app/modules/sync/infrastructure/queue"
	syncrouter "github.com/Black-And-White-Club/elo-bot/app/modules/sync/infrastructure/router"
	"github.com/Black-And-White-Club/elo-bot/app/queue"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the sync module. Its Run loop owns the periodic sweep.
type Module struct {
	SyncService   syncservice.Service
	SyncRouter    *syncrouter.SyncRouter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewSyncModule creates and initializes a new sync module.
func NewSyncModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	jobs *queue.Service,
	db bun.IDB,
	repo linkdb.Repository,
	ranks rankservice.Service,
	guilds syncservice.GuildLister,
	provisioner presentationservice.RoleProvisioner,
	reconciler presentationservice.PresentationReconciler,
	cfg syncservice.Config,
) (*Module, error) {
	logger := obs.Logger.With("module", "sync")
	tracer := obs.Tracer

	logger.InfoContext(ctx, "sync.NewSyncModule initializing")

	metrics := observability.NewOperationMetrics(obs.Registry, "elo_bot_sync")
	sweepMetrics := observability.NewSweepMetrics(obs.Registry, "elo_bot")

	scheduler := syncservice.NewScheduler(
		repo, db, ranks, guilds, provisioner, reconciler, cfg,
		logger, metrics, sweepMetrics, tracer,
	)

	queue.AddWorker(jobs, syncqueue.NewResyncWorker(scheduler, eventBus, logger))
	queue.AddWorker(jobs, syncqueue.NewSweepWorker(scheduler, eventBus, logger))
	handlers := synchandlers.NewSyncHandlers(syncqueue.NewScheduler(jobs), logger)

	syncRouter := syncrouter.NewSyncRouter(logger, router, eventBus, eventBus, tracer)
	if err := syncRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure sync router: %w", err)
	}

	return &Module{
		SyncService:   scheduler,
		SyncRouter:    syncRouter,
		observability: obs,
	}, nil
}

// Run sweeps on the configured interval until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *gosync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting sync module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.SyncService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Sweep loop stopped", attr.Error(err))
	}
	logger.InfoContext(ctx, "Sync module goroutine stopped")
}

// Close shuts down the sync module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.SyncRouter != nil {
		if err := m.SyncRouter.Close(); err != nil {
			return fmt.Errorf("error closing SyncRouter: %w", err)
		}
	}
	m.observability.Logger.Info("Sync module stopped")
	return nil
}
