// Package testutils starts the containers the integration suites run against.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	linkdb "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories"
	"github.com/Black-And-White-Club/elo-bot/config"
	"github.com/Black-And-White-Club/elo-bot/db/bundb"
	"github.com/Black-And-White-Club/elo-bot/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DBService     *bundb.DBService
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS, migrates the schema and
// connects an event bus. Callers own Cleanup.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(ctx)
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	env.Config = &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverPostgres, DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
	}

	env.DBService, err = bundb.NewBunDBService(ctx, env.Config.Database, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	env.DB = env.DBService.GetDB()

	if err := bundb.Migrate(ctx, env.DB, env.Logger); err != nil {
		return err
	}

	env.EventBus, err = eventbus.NewEventBus(ctx, natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	return nil
}

// ResetTables empties every table between tests.
func (env *TestEnvironment) ResetTables(t *testing.T) {
	t.Helper()
	if _, err := env.DB.NewTruncateTable().Model((*linkdb.LinkedAccount)(nil)).Exec(env.Ctx); err != nil {
		t.Fatalf("failed to truncate linked_accounts: %v", err)
	}
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DBService != nil {
		if err := env.DBService.Close(); err != nil {
			log.Printf("Error closing DB: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}
