package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestInProcessEventBus_RoutesByMetadataTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInProcessEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	linkCh, err := bus.Subscribe(ctx, "link.requested.v1")
	require.NoError(t, err)
	replyCh, err := bus.Subscribe(ctx, "discord.reply.requested.v1")
	require.NoError(t, err)

	first, err := handlerwrapper.NewMessage(ctx, "link.requested.v1", map[string]string{"query": "s1mple"})
	require.NoError(t, err)
	second, err := handlerwrapper.NewMessage(ctx, "discord.reply.requested.v1", map[string]string{"content": "ok"})
	require.NoError(t, err)

	require.NoError(t, bus.Publish("", first, second))

	assert.JSONEq(t, `{"query":"s1mple"}`, string(receive(t, linkCh).Payload))
	assert.JSONEq(t, `{"content":"ok"}`, string(receive(t, replyCh).Payload))
}

func TestInProcessEventBus_RejectsUnaddressedMessage(t *testing.T) {
	bus := NewInProcessEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	err := bus.Publish("", message.NewMessage("id-1", []byte(`{}`)))

	assert.ErrorContains(t, err, "no topic metadata")
}

func TestInProcessEventBus_ExplicitTopicStampsMetadata(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInProcessEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	ch, err := bus.Subscribe(ctx, "sync.sweep.requested.v1")
	require.NoError(t, err)

	require.NoError(t, bus.Publish("sync.sweep.requested.v1", message.NewMessage("", []byte(`{}`))))

	msg := receive(t, ch)
	assert.NotEmpty(t, msg.UUID)
	assert.Equal(t, "sync.sweep.requested.v1", msg.Metadata.Get(handlerwrapper.TopicMetadataKey))
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	bus := NewInProcessEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, bus.Close())
	assert.NoError(t, bus.Close())
}

func TestStreamConfigs_CoverEveryTopicFamily(t *testing.T) {
	var subjects []string
	for _, cfg := range StreamConfigs() {
		subjects = append(subjects, cfg.Subjects...)
	}
	assert.ElementsMatch(t, []string{"link.>", "sync.>", "presentation.>", "discord.>"}, subjects)
}
