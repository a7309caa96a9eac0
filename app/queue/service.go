// Package queue runs background jobs on River. Without a Postgres DSN jobs run
// inline on goroutines owned by the service.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
)

// QueueCommands is the queue jobs triggered by operator commands land on.
const QueueCommands = "commands"

const serviceName = "river"

var (
	// ErrNotStarted is returned when a job is inserted before Start.
	ErrNotStarted = errors.New("queue service not started")
	// ErrUnknownJob is returned when no worker is registered for a job kind.
	ErrUnknownJob = errors.New("no worker registered for job kind")
)

// Inserter enqueues jobs. Modules depend on this rather than on Service.
type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs) error
}

// Service owns the River client and its worker registry.
type Service struct {
	pool    *pgxpool.Pool
	workers *river.Workers
	client  *river.Client[pgx.Tx]
	inline  map[string]func(context.Context, river.JobArgs) error

	mu      sync.RWMutex
	started bool
	running sync.WaitGroup

	logger  *slog.Logger
	metrics observability.OperationMetrics
}

var _ Inserter = (*Service)(nil)

// NewService connects to Postgres for River. An empty DSN selects inline mode.
func NewService(ctx context.Context, dsn string, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	ctxLogger := logger.With(attr.String("component", "river_queue"))

	s := &Service{
		workers: river.NewWorkers(),
		inline:  make(map[string]func(context.Context, river.JobArgs) error),
		logger:  ctxLogger,
		metrics: metrics,
	}
	if dsn == "" {
		ctxLogger.InfoContext(ctx, "No queue database configured, running jobs inline")
		return s, nil
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.ErrorContext(ctx, "Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s.pool = pool
	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	return s, nil
}

// AddWorker registers worker for its job kind. It must be called before Start.
func AddWorker[T river.JobArgs](s *Service, worker river.Worker[T]) {
	river.AddWorker(s.workers, worker)

	var zero T
	s.inline[zero.Kind()] = func(ctx context.Context, raw river.JobArgs) error {
		args, ok := raw.(T)
		if !ok {
			return fmt.Errorf("unexpected args %T for job kind %q", raw, zero.Kind())
		}
		return worker.Work(ctx, &river.Job[T]{
			JobRow: &rivertype.JobRow{Kind: args.Kind(), Attempt: 1, MaxAttempts: 1, Queue: QueueCommands},
			Args:   args,
		})
	}
}

// Migrate applies River's schema migrations. It is a no-op in inline mode.
func (s *Service) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	migrator, err := rivermigrate.New(riverpgxv5.New(s.pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// Start creates the River client from the registered workers and starts working jobs.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", serviceName)

	if s.pool != nil {
		client, err := river.NewClient(riverpgxv5.New(s.pool), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: 10},
				QueueCommands:      {MaxWorkers: 2},
			},
			Workers: s.workers,
		})
		if err != nil {
			s.metrics.RecordOperationFailure(ctx, "start_service", serviceName)
			return fmt.Errorf("failed to create River client: %w", err)
		}
		if err := client.Start(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to start River client", attr.Error(err))
			s.metrics.RecordOperationFailure(ctx, "start_service", serviceName)
			return fmt.Errorf("failed to start River client: %w", err)
		}
		s.client = client
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.metrics.RecordOperationSuccess(ctx, "start_service", serviceName)
	s.metrics.RecordOperationDuration(ctx, "start_service", serviceName, time.Since(start))
	s.logger.InfoContext(ctx, "Queue service started", attr.Bool("inline", s.pool == nil))
	return nil
}

// Insert enqueues args on the commands queue. Identical pending jobs are
// collapsed into one.
func (s *Service) Insert(ctx context.Context, args river.JobArgs) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}

	s.metrics.RecordOperationAttempt(ctx, "insert_job", serviceName)

	if s.client != nil {
		_, err := s.client.Insert(ctx, args, &river.InsertOpts{
			Queue:      QueueCommands,
			UniqueOpts: river.UniqueOpts{ByArgs: true},
		})
		if err != nil {
			s.metrics.RecordOperationFailure(ctx, "insert_job", serviceName)
			return fmt.Errorf("failed to insert %s job: %w", args.Kind(), err)
		}
		s.metrics.RecordOperationSuccess(ctx, "insert_job", serviceName)
		return nil
	}

	run, ok := s.inline[args.Kind()]
	if !ok {
		s.metrics.RecordOperationFailure(ctx, "insert_job", serviceName)
		return fmt.Errorf("%w: %s", ErrUnknownJob, args.Kind())
	}

	jobCtx := context.WithoutCancel(ctx)
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		if err := run(jobCtx, args); err != nil {
			s.logger.ErrorContext(jobCtx, "Inline job failed",
				attr.String("kind", args.Kind()),
				attr.Error(err),
			)
		}
	}()
	s.metrics.RecordOperationSuccess(ctx, "insert_job", serviceName)
	return nil
}

// Stop stops the River client, or waits for inline jobs, until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	var err error
	if s.client != nil {
		if stopErr := s.client.Stop(ctx); stopErr != nil {
			err = fmt.Errorf("failed to stop River client: %w", stopErr)
		}
	}

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}

	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.InfoContext(ctx, "Queue service stopped")
	return err
}
