package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	"github.com/Black-And-White-Club/elo-bot/app/modules/discord"
	"github.com/Black-And-White-Club/elo-bot/app/modules/link"
	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	"github.com/Black-And-White-Club/elo-bot/app/modules/presentation"
	rankservice "github.com/Black-And-White-Club/elo-bot/app/modules/rank/application"
	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	"github.com/Black-And-White-Club/elo-bot/app/modules/rank/infrastructure/faceit"
	syncmodule "github.com/Black-And-White-Club/elo-bot/app/modules/sync"
	syncservice "github.com/Black-And-White-Club/elo-bot/app/modules/sync/application"
	"github.com/Black-And-White-Club/elo-bot/app/queue"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/Black-And-White-Club/elo-bot/config"
	"github.com/Black-And-White-Club/elo-bot/db/bundb"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

// App holds every long-lived component of the bot.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	Session       *discordgo.Session
	Queue         *queue.Service
	Modules       Modules
	httpServer    *http.Server
}

// Modules groups the application modules.
type Modules struct {
	Presentation *presentation.Module
	Sync         *syncmodule.Module
	Link         *link.Module
	Discord      *discord.Module
}

func (m Modules) all() []Module {
	return []Module{m.Presentation, m.Sync, m.Link, m.Discord}
}

// NewApp builds the application from cfg. Nothing talks to Discord until Start.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}
	if err := app.initialize(ctx); err != nil {
		if closeErr := app.closeResources(ctx); closeErr != nil {
			logger.ErrorContext(ctx, "Errors while releasing resources", "error", closeErr)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Application initialized",
		"database_driver", cfg.Database.Driver,
		"nats", cfg.NATS.URL != "",
	)
	return app, nil
}

func (app *App) initialize(ctx context.Context) error {
	cfg := app.Config
	obs := app.Observability
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database service: %w", err)
	}
	app.DB = dbService

	if err := bundb.Migrate(ctx, dbService.GetDB(), logger); err != nil {
		return err
	}

	app.EventBus, err = eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	app.Router, err = NewWatermillRouter(logger, obs.Registry)
	if err != nil {
		return err
	}

	app.Session, err = discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	app.Session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	queueDSN := ""
	if cfg.Database.Driver == config.DriverPostgres {
		queueDSN = cfg.Database.DSN
	}
	app.Queue, err = queue.NewService(ctx, queueDSN, logger, observability.NewOperationMetrics(obs.Registry, "elo_bot_queue"))
	if err != nil {
		return fmt.Errorf("failed to create queue service: %w", err)
	}
	if err := app.Queue.Migrate(ctx); err != nil {
		return err
	}

	return app.initializeModules(ctx)
}

func (app *App) initializeModules(ctx context.Context) error {
	cfg := app.Config
	obs := app.Observability
	db := app.DB.GetDB()

	catalog := rankdomain.DefaultCatalog()
	provider := faceit.NewClient(cfg.Faceit.BaseURL, cfg.Faceit.APIKey, cfg.Faceit.Game, cfg.Faceit.RequestsPerSecond)
	ranks := rankservice.NewRankService(
		provider, catalog, obs.Logger.With("module", "rank"),
		observability.NewOperationMetrics(obs.Registry, "elo_bot_rank"), obs.Tracer,
		rankservice.WithRetry(3, 500*time.Millisecond),
	)

	presentationModule, err := presentation.NewPresentationModule(ctx, obs, app.EventBus, app.Router, app.Session, catalog, presentation.Config{
		GuildLimit:      cfg.Discord.GuildLimit,
		RoleCreateDelay: cfg.Sync.RoleCreateDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize presentation module: %w", err)
	}

	repo := linkdb.NewRepository(db)

	syncModule, err := syncmodule.NewSyncModule(ctx, obs, app.EventBus, app.Router, app.Queue, db, repo, ranks,
		presentationModule.Platform, presentationModule.Provisioner, presentationModule.Reconciler,
		syncservice.Config{SweepInterval: cfg.Sync.SweepInterval, CallDelay: cfg.Sync.CallDelay},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize sync module: %w", err)
	}

	linkModule, err := link.NewLinkModule(ctx, obs, app.EventBus, app.Router, app.Queue, db, repo, ranks,
		syncModule.SyncService, presentationModule.Platform,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize link module: %w", err)
	}

	discordModule, err := discord.NewDiscordModule(ctx, obs, app.EventBus, app.Router, app.Session, discord.Config{
		ApplicationID: cfg.Discord.ApplicationID,
		OwnerID:       cfg.Discord.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize discord module: %w", err)
	}

	app.Modules = Modules{
		Presentation: presentationModule,
		Sync:         syncModule,
		Link:         linkModule,
		Discord:      discordModule,
	}
	return nil
}

// closeResources releases whatever initialize managed to create.
func (app *App) closeResources(ctx context.Context) error {
	var errs []error
	if app.Queue != nil {
		errs = append(errs, app.Queue.Stop(ctx))
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}
