package linkqueue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	linkservice "github.com/Black-And-White-Club/elo-bot/app/modules/link/application"
	"github.com/Black-And-White-Club/elo-bot/app/modules/link/application/mocks"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakePublisher struct {
	topics   []string
	messages []*message.Message
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.topics = append(f.topics, topic)
	f.messages = append(f.messages, messages...)
	return nil
}

type fakeInserter struct {
	jobs []river.JobArgs
	err  error
}

func (f *fakeInserter) Insert(ctx context.Context, args river.JobArgs) error {
	f.jobs = append(f.jobs, args)
	return f.err
}

var interaction = events.Interaction{ApplicationID: "app", Token: "tok"}

func restoreJob(i events.Interaction) *river.Job[RestoreJob] {
	return &river.Job[RestoreJob]{JobRow: &rivertype.JobRow{ID: 7}, Args: RestoreJob{Interaction: i}}
}

func publishedContent(t *testing.T, pub *fakePublisher) string {
	t.Helper()
	require.Len(t, pub.messages, 1)
	assert.Equal(t, discordevents.ReplyRequestedV1, pub.topics[0])
	var reply discordevents.ReplyRequestedPayloadV1
	require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &reply))
	assert.Equal(t, interaction, reply.Interaction)
	return reply.Content
}

func TestRestoreWorker_Work(t *testing.T) {
	tests := []struct {
		name   string
		report linkservice.RestoreReport
		err    error
		want   string
	}{
		{
			name:   "reports counts",
			report: linkservice.RestoreReport{Total: 10, Assumed: 4, Added: 3, Errors: 1},
			want:   "Restore complete. Total: 10, Assumed: 4, Added: 3, Errors: 1",
		},
		{
			name: "guild listing fails",
			err:  errors.New("gateway down"),
			want: MessageRestoreFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockService(ctrl)
			svc.EXPECT().Restore(gomock.Any()).Return(tt.report, tt.err)

			pub := &fakePublisher{}
			w := NewRestoreWorker(svc, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

			require.NoError(t, w.Work(context.Background(), restoreJob(interaction)))
			assert.Equal(t, tt.want, publishedContent(t, pub))
		})
	}
}

func TestRestoreWorker_NoInteraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Restore(gomock.Any()).Return(linkservice.RestoreReport{}, nil)

	pub := &fakePublisher{}
	w := NewRestoreWorker(svc, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, w.Work(context.Background(), restoreJob(events.Interaction{})))
	assert.Empty(t, pub.messages)
}

func TestRestoreScheduler_EnqueueRestore(t *testing.T) {
	ins := &fakeInserter{}
	s := NewRestoreScheduler(ins)

	require.NoError(t, s.EnqueueRestore(context.Background(), &interaction))
	require.NoError(t, s.EnqueueRestore(context.Background(), nil))

	require.Len(t, ins.jobs, 2)
	assert.Equal(t, RestoreJob{Interaction: interaction}, ins.jobs[0])
	assert.Equal(t, RestoreJob{}, ins.jobs[1])

	ins.err = errors.New("full")
	assert.Error(t, s.EnqueueRestore(context.Background(), &interaction))
}
