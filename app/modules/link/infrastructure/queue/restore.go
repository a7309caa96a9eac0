package linkqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	linkservice "github.com/Black-And-White-Club/elo-bot/app/modules/link/application"
	linkhandlers "github.com/Black-And-White-Club/elo-bot/app/modules/link/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-bot/app/queue"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// MessageRestoreFailed answers a restore that could not list guilds.
const MessageRestoreFailed = "Error attempting to get guilds."

// RestoreJob rebuilds links from existing nicknames.
type RestoreJob struct {
	Interaction events.Interaction `json:"interaction"`
}

// Kind returns the job type identifier for River
func (RestoreJob) Kind() string { return "link_restore" }

// Publisher publishes reply messages.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// RestoreWorker runs a restore and answers the interaction that requested it.
type RestoreWorker struct {
	river.WorkerDefaults[RestoreJob]
	service   linkservice.Service
	publisher Publisher
	logger    *slog.Logger
}

// NewRestoreWorker creates a new RestoreWorker.
func NewRestoreWorker(service linkservice.Service, publisher Publisher, logger *slog.Logger) *RestoreWorker {
	return &RestoreWorker{service: service, publisher: publisher, logger: logger}
}

// Work runs the restore. A failed restore is answered, not retried, because a
// retry would answer an interaction that has already expired.
func (w *RestoreWorker) Work(ctx context.Context, job *river.Job[RestoreJob]) error {
	content := MessageRestoreFailed
	report, err := w.service.Restore(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Restore job failed", attr.Int64("job_id", job.ID), attr.Error(err))
	} else {
		content = linkhandlers.RestoreMessage(report)
	}
	return w.reply(ctx, job.Args.Interaction, content)
}

func (w *RestoreWorker) reply(ctx context.Context, interaction events.Interaction, content string) error {
	for _, r := range discordevents.Reply(&interaction, content) {
		msg, err := handlerwrapper.NewMessage(ctx, r.Topic, r.Payload)
		if err != nil {
			return err
		}
		if err := w.publisher.Publish(r.Topic, msg); err != nil {
			return fmt.Errorf("failed to publish restore reply: %w", err)
		}
	}
	return nil
}

// RestoreScheduler enqueues restore jobs.
type RestoreScheduler struct {
	inserter queue.Inserter
}

var _ linkhandlers.RestoreScheduler = (*RestoreScheduler)(nil)

// NewRestoreScheduler creates a new RestoreScheduler.
func NewRestoreScheduler(inserter queue.Inserter) *RestoreScheduler {
	return &RestoreScheduler{inserter: inserter}
}

// EnqueueRestore queues a restore that answers interaction when done.
func (s *RestoreScheduler) EnqueueRestore(ctx context.Context, interaction *events.Interaction) error {
	job := RestoreJob{}
	if interaction != nil {
		job.Interaction = *interaction
	}
	return s.inserter.Insert(ctx, job)
}
