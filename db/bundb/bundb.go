package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

// DBService owns the bun connection used by every repository.
type DBService struct {
	db     *bun.DB
	driver string
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Driver reports which backend is in use.
func (s *DBService) Driver() string {
	return s.driver
}

// Close releases the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService opens and pings the configured database.
func NewBunDBService(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DBService, error) {
	logger.InfoContext(ctx, "Opening database", slog.String("driver", cfg.Driver))

	var (
		db  *bun.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres, "":
		db, err = pgDB(ctx, cfg.DSN)
	case config.DriverSQLite:
		db, err = SQLiteDB(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return &DBService{db: db, driver: cfg.Driver}, nil
}

func pgDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// SQLiteDB opens a SQLite database through modernc.org/sqlite. It is used for
// single-process deployments and by repository tests with "file::memory:".
func SQLiteDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// an in-memory database lives per connection
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
