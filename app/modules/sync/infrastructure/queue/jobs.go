package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	syncservice "github.com/Black-And-White-Club/elo-bot/app/modules/sync/application"
	"github.com/Black-And-White-Club/elo-bot/app/queue"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// Reply texts.
const (
	MessageNotLinked        = "User not linked."
	MessageSweepInProgress  = "A sweep is already running."
	MessageSomethingWrong   = "Whops! Something went wrong."
	messageResyncedFormat   = "Resynced user '%s' in %d guilds (%d updated, %d failed)."
	messageResyncFailFormat = "Error when attempting to resync user '%s'."
	messageSweepFormat      = "Sweep complete. Users: %d, Resolved: %d, Not found: %d, Failed: %d"
)

// ResyncJob refreshes one linked user's presentation.
type ResyncJob struct {
	DiscordID   sharedtypes.DiscordID `json:"discord_id"`
	Interaction events.Interaction    `json:"interaction"`
}

// Kind returns the job type identifier for River
func (ResyncJob) Kind() string { return "sync_resync" }

// SweepJob runs a sweep outside the schedule.
type SweepJob struct {
	Interaction events.Interaction `json:"interaction"`
}

// Kind returns the job type identifier for River
func (SweepJob) Kind() string { return "sync_sweep" }

// Publisher publishes reply messages.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

type replier struct {
	publisher Publisher
}

func (r replier) reply(ctx context.Context, interaction events.Interaction, content string) error {
	for _, res := range discordevents.Reply(&interaction, content) {
		msg, err := handlerwrapper.NewMessage(ctx, res.Topic, res.Payload)
		if err != nil {
			return err
		}
		if err := r.publisher.Publish(res.Topic, msg); err != nil {
			return fmt.Errorf("failed to publish reply: %w", err)
		}
	}
	return nil
}

// ResyncWorker works ResyncJob.
type ResyncWorker struct {
	river.WorkerDefaults[ResyncJob]
	replier
	service syncservice.Service
	logger  *slog.Logger
}

// NewResyncWorker creates a new ResyncWorker.
func NewResyncWorker(service syncservice.Service, publisher Publisher, logger *slog.Logger) *ResyncWorker {
	return &ResyncWorker{replier: replier{publisher: publisher}, service: service, logger: logger}
}

func (w *ResyncWorker) Work(ctx context.Context, job *river.Job[ResyncJob]) error {
	id := job.Args.DiscordID
	report, err := w.service.ResyncUser(ctx, id)

	var content string
	switch {
	case errors.Is(err, syncservice.ErrNotLinked):
		content = MessageNotLinked
	case err != nil:
		w.logger.ErrorContext(ctx, "Resync job failed", attr.DiscordID(id), attr.Error(err))
		content = fmt.Sprintf(messageResyncFailFormat, id)
	default:
		content = fmt.Sprintf(messageResyncedFormat, id, report.Guilds, report.Applied, report.Failed)
	}
	return w.reply(ctx, job.Args.Interaction, content)
}

// SweepWorker works SweepJob.
type SweepWorker struct {
	river.WorkerDefaults[SweepJob]
	replier
	service syncservice.Service
	logger  *slog.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(service syncservice.Service, publisher Publisher, logger *slog.Logger) *SweepWorker {
	return &SweepWorker{replier: replier{publisher: publisher}, service: service, logger: logger}
}

func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepJob]) error {
	report, err := w.service.Sweep(ctx)

	var content string
	switch {
	case errors.Is(err, syncservice.ErrSweepInProgress):
		content = MessageSweepInProgress
	case err != nil:
		w.logger.ErrorContext(ctx, "Sweep job failed", attr.Error(err))
		content = MessageSomethingWrong
	default:
		content = fmt.Sprintf(messageSweepFormat, report.Users, report.Resolved, report.NotFound, report.Failed)
	}
	return w.reply(ctx, job.Args.Interaction, content)
}

// Scheduler enqueues sync jobs.
type Scheduler struct {
	inserter queue.Inserter
}

// NewScheduler creates a new Scheduler.
func NewScheduler(inserter queue.Inserter) *Scheduler {
	return &Scheduler{inserter: inserter}
}

// EnqueueResync queues a resync of discordID.
func (s *Scheduler) EnqueueResync(ctx context.Context, discordID sharedtypes.DiscordID, interaction *events.Interaction) error {
	job := ResyncJob{DiscordID: discordID}
	if interaction != nil {
		job.Interaction = *interaction
	}
	return s.inserter.Insert(ctx, job)
}

// EnqueueSweep queues an unscheduled sweep.
func (s *Scheduler) EnqueueSweep(ctx context.Context, interaction *events.Interaction) error {
	job := SweepJob{}
	if interaction != nil {
		job.Interaction = *interaction
	}
	return s.inserter.Insert(ctx, job)
}
