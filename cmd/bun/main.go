package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	linkmigrations "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/elo-bot/config"
	"github.com/Black-And-White-Club/elo-bot/db/bundb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	dbService, err := bundb.NewBunDBService(ctx, cfg.Database, slog.Default())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer dbService.Close()

	migrators := map[string]*migrate.Migrator{
		"link": migrate.NewMigrator(dbService.GetDB(), linkmigrations.Migrations),
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators),
			newQueueCommand(cfg),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

func newMultiModuleDBCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", moduleName)
						if err := migrator.Init(c.Context); err != nil {
							return fmt.Errorf("module %s: %w", moduleName, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						group, err := migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", moduleName)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", moduleName)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					moduleName := c.Args().First()
					migrator, ok := migrators[moduleName]
					if !ok {
						return fmt.Errorf("invalid module name: %s", moduleName)
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", moduleName)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}

// newQueueCommand manages the job queue schema. It needs the postgres driver.
func newQueueCommand(cfg *config.Config) *cli.Command {
	run := func(c *cli.Context, direction rivermigrate.Direction) error {
		if cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("job queue migrations need the %s driver, got %s", config.DriverPostgres, cfg.Database.Driver)
		}
		pool, err := pgxpool.New(c.Context, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			return err
		}
		res, err := migrator.Migrate(c.Context, direction, nil)
		if err != nil {
			return err
		}
		for _, v := range res.Versions {
			fmt.Printf("Queue migration %s: version %d\n", direction, v.Version)
		}
		if len(res.Versions) == 0 {
			fmt.Println("Queue schema is up to date")
		}
		return nil
	}

	return &cli.Command{
		Name:  "queue",
		Usage: "job queue migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply job queue migrations",
				Action: func(c *cli.Context) error { return run(c, rivermigrate.DirectionUp) },
			},
			{
				Name:   "down",
				Usage:  "roll back the last job queue migration",
				Action: func(c *cli.Context) error { return run(c, rivermigrate.DirectionDown) },
			},
		},
	}
}
